package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/nexvora/crm_backend/models"
	"github.com/nexvora/crm_backend/utils"
	"gorm.io/gorm"
)

type serviceReader struct {
	db *gorm.DB
}

func (r *serviceReader) getServices(ctx context.Context, ids []int) []*dataloader.Result[*models.Service] {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return handleError[*models.Service](len(ids), utils.ErrorUnauthorized("tenant id is required"))
	}

	var services []models.Service
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantId, ids).
		Find(&services).Error
	if err != nil {
		return handleError[*models.Service](len(ids), err)
	}

	resultMap := make(map[int]*models.Service, len(services))
	for i := range services {
		resultMap[services[i].ID] = &services[i]
	}

	loaderResults := make([]*dataloader.Result[*models.Service], 0, len(ids))
	for _, id := range ids {
		loaderResults = append(loaderResults, &dataloader.Result[*models.Service]{Data: resultMap[id]})
	}
	return loaderResults
}
