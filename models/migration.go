package models

import (
	"log"

	"github.com/nexvora/crm_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Tenant{}, &User{},
		&Company{}, &Contact{}, &Service{},
		&Opportunity{}, &OpportunityTask{},
		&Proposal{}, &ProposalItem{},
		&Attachment{},
		&MailMessageRecord{},
		&IdempotencyKey{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
