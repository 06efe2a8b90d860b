package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context pairs the request context with the gorm handle a repo call must
// use: the root handle, or the open transaction of an Atomic block.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}
