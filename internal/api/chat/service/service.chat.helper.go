package chatsvc

import (
	"errors"

	"talking_menu/internal/common"
)

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}
