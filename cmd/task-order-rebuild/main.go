// task-order-rebuild renumbers every task lane to a dense 0..n-1 sequence.
//
// Lane order can accrete gaps after deletes or partially applied reorders;
// gaps are harmless for sorting but this makes board positions predictable
// again. Sorting inside a lane follows the board's own order: task_order,
// then created_at for ties.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/task-order-rebuild [-tenant <id>] [-dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/models"
	"github.com/nexvora/crm_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type laneKey struct {
	TenantId      string `gorm:"column:tenant_id"`
	OpportunityId int    `gorm:"column:opportunity_id"`
	Status        string `gorm:"column:status"`
}

func main() {
	tenantFlag := flag.String("tenant", "", "restrict the rebuild to one tenant")
	dryRun := flag.Bool("dry-run", false, "report lanes that would change without writing")
	flag.Parse()

	ctx := utils.SetSkipTenantScopeInContext(context.Background(), true)
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	lanes, err := collectLanes(ctx, db, *tenantFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to collect lanes: %v\n", err)
		os.Exit(1)
	}

	changedLanes := 0
	changedRows := 0
	for _, lane := range lanes {
		n, err := rebuildLane(ctx, db, lane, *dryRun)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed lane tenant=%s opportunity=%d status=%s: %v\n",
				lane.TenantId, lane.OpportunityId, lane.Status, err)
			os.Exit(1)
		}
		if n > 0 {
			changedLanes++
			changedRows += n
		}
	}

	verb := "renumbered"
	if *dryRun {
		verb = "would renumber"
	}
	fmt.Printf("%s %d rows across %d lanes (%d lanes scanned)\n", verb, changedRows, changedLanes, len(lanes))
}

func collectLanes(ctx context.Context, db *gorm.DB, tenantId string) ([]laneKey, error) {
	var lanes []laneKey
	q := db.WithContext(ctx).Model(&models.OpportunityTask{}).
		Select("tenant_id, opportunity_id, status").
		Group("tenant_id, opportunity_id, status")
	if tenantId != "" {
		q = q.Where("tenant_id = ?", tenantId)
	}
	if err := q.Scan(&lanes).Error; err != nil {
		return nil, err
	}
	return lanes, nil
}

// rebuildLane assigns 0..n-1 inside one (tenant, opportunity, status) lane and
// returns how many rows actually moved.
func rebuildLane(ctx context.Context, db *gorm.DB, lane laneKey, dryRun bool) (int, error) {
	changed := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tasks []models.OpportunityTask
		if err := tx.
			Where("tenant_id = ? AND opportunity_id = ? AND status = ?", lane.TenantId, lane.OpportunityId, lane.Status).
			Order("task_order ASC, created_at ASC").
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Find(&tasks).Error; err != nil {
			return err
		}
		for i, task := range tasks {
			if task.TaskOrder == i {
				continue
			}
			changed++
			if dryRun {
				continue
			}
			if err := tx.Model(&models.OpportunityTask{}).
				Where("id = ?", task.ID).
				UpdateColumn("task_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}
