package utility

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"talking_menu/internal/common"
)

// ParseObjectID chuyển chuỗi hex thành ObjectID, trả ErrInvalidID nếu sai định dạng
func ParseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, common.NewError(common.ErrCodeValidationFormat, "Invalid id: "+id, common.StatusBadRequest, nil)
	}
	return oid, nil
}
