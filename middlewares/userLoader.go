package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/nexvora/crm_backend/models"
	"github.com/nexvora/crm_backend/utils"
	"gorm.io/gorm"
)

type userReader struct {
	db *gorm.DB
}

func (r *userReader) getUsers(ctx context.Context, ids []int) []*dataloader.Result[*models.User] {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return handleError[*models.User](len(ids), utils.ErrorUnauthorized("tenant id is required"))
	}

	// superadmins are visible from any tenant, same as assignment resolution
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("(tenant_id = ? OR role = ?) AND id IN ?", tenantId, models.UserRoleSuperadmin, ids).
		Find(&users).Error
	if err != nil {
		return handleError[*models.User](len(ids), err)
	}

	resultMap := make(map[int]*models.User, len(users))
	for i := range users {
		users[i].PrepareGive()
		resultMap[users[i].ID] = &users[i]
	}

	loaderResults := make([]*dataloader.Result[*models.User], 0, len(ids))
	for _, id := range ids {
		loaderResults = append(loaderResults, &dataloader.Result[*models.User]{Data: resultMap[id]})
	}
	return loaderResults
}
