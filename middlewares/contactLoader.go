package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/nexvora/crm_backend/models"
	"github.com/nexvora/crm_backend/utils"
	"gorm.io/gorm"
)

type contactReader struct {
	db *gorm.DB
}

func (r *contactReader) getContacts(ctx context.Context, ids []int) []*dataloader.Result[*models.Contact] {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return handleError[*models.Contact](len(ids), utils.ErrorUnauthorized("tenant id is required"))
	}

	var contacts []models.Contact
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantId, ids).
		Find(&contacts).Error
	if err != nil {
		return handleError[*models.Contact](len(ids), err)
	}

	resultMap := make(map[int]*models.Contact, len(contacts))
	for i := range contacts {
		resultMap[contacts[i].ID] = &contacts[i]
	}

	loaderResults := make([]*dataloader.Result[*models.Contact], 0, len(ids))
	for _, id := range ids {
		loaderResults = append(loaderResults, &dataloader.Result[*models.Contact]{Data: resultMap[id]})
	}
	return loaderResults
}
