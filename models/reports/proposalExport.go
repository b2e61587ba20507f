package reports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type proposalExportRow struct {
	ID          int             `gorm:"column:id"`
	Title       string          `gorm:"column:title"`
	CompanyName *string         `gorm:"column:company_name"`
	Status      string          `gorm:"column:status"`
	Version     int             `gorm:"column:version"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount"`
	ItemCount   int             `gorm:"column:item_count"`
	SentAt      *time.Time      `gorm:"column:sent_at"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
}

func getProposalExportRows(ctx context.Context, tenantId string) ([]*proposalExportRow, error) {
	sql := `
SELECT
    p.id,
    p.title,
    companies.name AS company_name,
    p.status,
    p.version,
    p.total_amount,
    COUNT(proposal_items.id) AS item_count,
    p.sent_at,
    p.created_at
FROM
    proposals p
    LEFT JOIN companies ON companies.id = p.company_id
    LEFT JOIN proposal_items ON proposal_items.proposal_id = p.id
WHERE
    p.tenant_id = ?
GROUP BY
    p.id, p.title, companies.name, p.status, p.version, p.total_amount, p.sent_at, p.created_at
ORDER BY
    p.created_at DESC;
`

	var records []*proposalExportRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, tenantId).Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ExportProposalsExcel renders the tenant's proposals as an xlsx workbook.
func ExportProposalsExcel(ctx context.Context) (*bytes.Buffer, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}

	data, err := getProposalExportRows(ctx, tenantId)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	// Add headers
	f.SetCellValue(sheet, "A1", "Id")
	f.SetCellValue(sheet, "B1", "Title")
	f.SetCellValue(sheet, "C1", "Company")
	f.SetCellValue(sheet, "D1", "Status")
	f.SetCellValue(sheet, "E1", "Version")
	f.SetCellValue(sheet, "F1", "Items")
	f.SetCellValue(sheet, "G1", "TotalAmount")
	f.SetCellValue(sheet, "H1", "SentAt")
	f.SetCellValue(sheet, "I1", "CreatedAt")

	// Add data
	for i, d := range data {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheet, "A"+row, d.ID)
		f.SetCellValue(sheet, "B"+row, d.Title)
		f.SetCellValue(sheet, "C"+row, utils.DereferencePtr(d.CompanyName, ""))
		f.SetCellValue(sheet, "D"+row, d.Status)
		f.SetCellValue(sheet, "E"+row, d.Version)
		f.SetCellValue(sheet, "F"+row, d.ItemCount)
		f.SetCellValue(sheet, "G"+row, d.TotalAmount.StringFixed(2))
		if d.SentAt != nil {
			f.SetCellValue(sheet, "H"+row, d.SentAt.UTC().Format(time.RFC3339))
		}
		f.SetCellValue(sheet, "I"+row, d.CreatedAt.UTC().Format(time.RFC3339))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}
