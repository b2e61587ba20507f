package middlewares

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/models"
	"gorm.io/gorm"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders batch the per-row display expansions the board and proposal list
// endpoints trigger: assignee users/contacts and proposal item services.
type Loaders struct {
	UserLoader    *dataloader.Loader[int, *models.User]
	ContactLoader *dataloader.Loader[int, *models.Contact]
	ServiceLoader *dataloader.Loader[int, *models.Service]
}

func NewLoaders(conn *gorm.DB) *Loaders {
	userReader := &userReader{db: conn}
	contactReader := &contactReader{db: conn}
	serviceReader := &serviceReader{db: conn}

	return &Loaders{
		UserLoader:    dataloader.NewBatchedLoader(userReader.getUsers, dataloader.WithWait[int, *models.User](time.Millisecond)),
		ContactLoader: dataloader.NewBatchedLoader(contactReader.getContacts, dataloader.WithWait[int, *models.Contact](time.Millisecond)),
		ServiceLoader: dataloader.NewBatchedLoader(serviceReader.getServices, dataloader.WithWait[int, *models.Service](time.Millisecond)),
	}
}

func LoaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(config.GetDB())
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func For(ctx context.Context) *Loaders {
	return ctx.Value(loadersKey).(*Loaders)
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}
