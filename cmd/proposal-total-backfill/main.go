// proposal-total-backfill recomputes total_amount for every proposal from its
// line items (sum of quantity * price). Useful after manual data surgery or
// when importing proposals from another system.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/proposal-total-backfill [-tenant <id>] [-dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/models"
	"github.com/nexvora/crm_backend/utils"
	"github.com/shopspring/decimal"
)

func main() {
	tenantFlag := flag.String("tenant", "", "restrict the backfill to one tenant")
	dryRun := flag.Bool("dry-run", false, "report mismatches without writing")
	flag.Parse()

	ctx := utils.SetSkipTenantScopeInContext(context.Background(), true)
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	var proposals []models.Proposal
	q := db.WithContext(ctx).Preload("Items")
	if *tenantFlag != "" {
		q = q.Where("tenant_id = ?", *tenantFlag)
	}
	if err := q.Find(&proposals).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to load proposals: %v\n", err)
		os.Exit(1)
	}

	fixed := 0
	for _, p := range proposals {
		total := decimal.Zero
		for _, item := range p.Items {
			total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		if p.TotalAmount.Equal(total) {
			continue
		}
		fixed++
		fmt.Printf("proposal %d (tenant %s): %s -> %s\n", p.ID, p.TenantId, p.TotalAmount.String(), total.String())
		if *dryRun {
			continue
		}
		if err := db.WithContext(ctx).Model(&models.Proposal{}).
			Where("id = ?", p.ID).
			UpdateColumn("total_amount", total).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to update proposal %d: %v\n", p.ID, err)
			os.Exit(1)
		}
	}

	verb := "fixed"
	if *dryRun {
		verb = "would fix"
	}
	fmt.Printf("%s %d of %d proposals\n", verb, fixed, len(proposals))
}
