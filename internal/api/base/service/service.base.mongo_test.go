package basesvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type sampleUpdate struct {
	Name     string `bson:"name"`
	Location string `bson:"location,omitempty"`
}

func TestToUpdateData_WrapsPlainStructInSet(t *testing.T) {
	u, err := ToUpdateData(sampleUpdate{Name: "Pho 24"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "Pho 24"}, u.Set)
	assert.Nil(t, u.AddToSet)
}

func TestToUpdateData_KeepsOperators(t *testing.T) {
	u, err := ToUpdateData(bson.M{
		"$addToSet": bson.M{"roles": "restaurant_admin"},
		"$pull":     bson.M{"accessibleRestaurants": "x"},
		"$inc":      bson.M{"totalChats": 1},
	})
	require.NoError(t, err)
	assert.Nil(t, u.Set)
	assert.Equal(t, "restaurant_admin", u.AddToSet["roles"])
	assert.Equal(t, "x", u.Pull["accessibleRestaurants"])
	assert.EqualValues(t, 1, u.Inc["totalChats"])
}

func TestToUpdateData_PassThrough(t *testing.T) {
	in := &UpdateData{Set: map[string]interface{}{"a": 1}}
	u, err := ToUpdateData(in)
	require.NoError(t, err)
	assert.Same(t, in, u)

	touch(u)
	assert.Contains(t, u.Set, "updatedAt")
}
