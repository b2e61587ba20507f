package models

import (
	"context"

	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/utils"
)

type Resource interface {
	GetTenantId() string
}

// first find in redis, then in db, using ctx's tenant_id in WHERE, cache result
// (may return RecordNotFound error)
func GetResource[T Resource](ctx context.Context, id int, associations ...string) (*T, error) {

	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}
	// find in redis
	result, err := utils.RetrieveRedis[T](id)
	if err != nil {
		return nil, err
	}
	// if not found in redis
	if result == nil {
		// fetch from db
		result, err = utils.FetchModel[T](ctx, tenantId, id, associations...)
		if err != nil {
			return nil, err
		}

		// store in redis
		if err := utils.StoreRedis[T](result, id); err != nil {
			return nil, err
		}
	} else {
		// if found in redis
		// check if tenant ids match; a foreign-tenant hit reads as absence,
		// never as a permission failure
		if (*result).GetTenantId() != tenantId {
			return nil, utils.ErrorRecordNotFound
		}
	}

	return result, nil
}

// list all resources, redis or db, cache result
func ListAllResource[ModelT any, AllModelT any](ctx context.Context, order string, associations ...string) ([]*AllModelT, error) {

	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}

	// first try redis cache
	results, err := utils.RetrieveRedisList[AllModelT](tenantId)
	if err != nil {
		return nil, err
	}
	// if not exists in redis
	if results == nil {
		// fetch from db
		db := config.GetDB()
		var model ModelT
		dbCtx := db.WithContext(ctx).Where("tenant_id = ?", tenantId)
		for _, association := range associations {
			dbCtx = dbCtx.Preload(association)
		}
		if order != "" {
			dbCtx = dbCtx.Order(order)
		}
		// db query
		if err = dbCtx.Model(&model).Find(&results).Error; err != nil {
			return nil, err
		}

		// caching the result
		if err := utils.StoreRedisList[AllModelT](results, tenantId); err != nil {
			return nil, err
		}
	}

	return results, nil
}
