package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/models"
	"github.com/nexvora/crm_backend/utils"
	"github.com/shopspring/decimal"
)

// End-to-end model regressions against real MySQL + Redis containers.
// Gated behind INTEGRATION_TESTS so the normal test run stays docker-free.
func TestOpportunityWorkflowRegression(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })
	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", "127.0.0.1:"+redisPort)
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "crm_test")
	t.Setenv("CONTENT_GENERATION_DISABLED", "true")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	tenantA, err := models.CreateTenant(context.Background(), &models.NewTenant{Name: "Tenant A"})
	if err != nil {
		t.Fatalf("create tenant A: %v", err)
	}
	tenantB, err := models.CreateTenant(context.Background(), &models.NewTenant{Name: "Tenant B"})
	if err != nil {
		t.Fatalf("create tenant B: %v", err)
	}

	ctxA := tenantContext(tenantA.ID.String())
	ctxB := tenantContext(tenantB.ID.String())

	companyA, err := models.CreateCompany(ctxA, &models.NewCompany{Name: "Acme"})
	if err != nil {
		t.Fatalf("create company: %v", err)
	}
	oppA, err := models.CreateOpportunity(ctxA, &models.NewOpportunity{
		CompanyId: companyA.ID,
		Title:     "Website relaunch",
	})
	if err != nil {
		t.Fatalf("create opportunity: %v", err)
	}

	t.Run("foreign tenant reads as not found", func(t *testing.T) {
		if _, err := models.GetOpportunity(ctxB, oppA.ID); utils.KindOf(err) != utils.ErrorKindNotFound {
			t.Fatalf("expected not found for foreign-tenant read, got %v", err)
		}
		if _, err := models.GetCompany(ctxB, companyA.ID); utils.KindOf(err) != utils.ErrorKindNotFound {
			t.Fatalf("expected not found for foreign-tenant company read, got %v", err)
		}
	})

	t.Run("new tasks append to the end of the todo lane", func(t *testing.T) {
		var tasks []*models.OpportunityTask
		for _, title := range []string{"first", "second", "third"} {
			task, err := models.CreateOpportunityTask(ctxA, &models.NewOpportunityTask{
				OpportunityId: oppA.ID,
				Title:         title,
			})
			if err != nil {
				t.Fatalf("create task %q: %v", title, err)
			}
			tasks = append(tasks, task)
		}
		for i, task := range tasks {
			if task.TaskOrder != i {
				t.Fatalf("task %q expected order %d, got %d", task.Title, i, task.TaskOrder)
			}
			if task.Status != models.TaskStatusTodo {
				t.Fatalf("task %q expected TODO lane, got %s", task.Title, task.Status)
			}
		}
	})

	t.Run("reorder skips tasks outside the opportunity", func(t *testing.T) {
		otherOpp, err := models.CreateOpportunity(ctxA, &models.NewOpportunity{
			CompanyId: companyA.ID,
			Title:     "Side deal",
		})
		if err != nil {
			t.Fatalf("create other opportunity: %v", err)
		}
		strayTask, err := models.CreateOpportunityTask(ctxA, &models.NewOpportunityTask{
			OpportunityId: otherOpp.ID,
			Title:         "stray",
		})
		if err != nil {
			t.Fatalf("create stray task: %v", err)
		}

		updated, err := models.BulkReorderTasks(ctxA, oppA.ID, []models.TaskReorderItem{
			{TaskId: strayTask.ID, Status: models.TaskStatusInProgress, Order: 5},
		})
		if err != nil {
			t.Fatalf("bulk reorder: %v", err)
		}
		if updated != 0 {
			t.Fatalf("expected 0 rows changed for a foreign task, got %d", updated)
		}

		reloaded, err := models.GetOpportunityTask(ctxA, strayTask.ID)
		if err != nil {
			t.Fatalf("reload stray task: %v", err)
		}
		if reloaded.Status != models.TaskStatusTodo || reloaded.TaskOrder != 0 {
			t.Fatalf("stray task moved: status=%s order=%d", reloaded.Status, reloaded.TaskOrder)
		}
	})

	t.Run("item replace recomputes the proposal total", func(t *testing.T) {
		service, err := models.CreateService(ctxA, &models.NewService{
			Name:      "Consulting",
			UnitPrice: decimal.NewFromInt(10),
		})
		if err != nil {
			t.Fatalf("create service: %v", err)
		}

		proposal, err := models.CreateProposal(ctxA, &models.NewProposal{
			CompanyId:     companyA.ID,
			OpportunityId: &oppA.ID,
			Title:         "Initial offer",
			Items: []models.NewProposalItem{
				{ServiceId: service.ID, Quantity: 2, Price: decimal.NewFromInt(10)},
			},
		})
		if err != nil {
			t.Fatalf("create proposal: %v", err)
		}
		if !proposal.TotalAmount.Equal(decimal.NewFromInt(20)) {
			t.Fatalf("expected total 20, got %s", proposal.TotalAmount)
		}

		newItems := []models.NewProposalItem{
			{ServiceId: service.ID, Quantity: 3, Price: decimal.NewFromInt(5)},
		}
		updatedProposal, err := models.UpdateProposal(ctxA, proposal.ID, &models.UpdateProposalInput{Items: &newItems})
		if err != nil {
			t.Fatalf("update proposal: %v", err)
		}
		if !updatedProposal.TotalAmount.Equal(decimal.NewFromInt(15)) {
			t.Fatalf("expected recomputed total 15, got %s", updatedProposal.TotalAmount)
		}
		if updatedProposal.Version != proposal.Version+1 {
			t.Fatalf("expected version bump from %d, got %d", proposal.Version, updatedProposal.Version)
		}
		if len(updatedProposal.Items) != 1 || updatedProposal.Items[0].Quantity != 3 {
			t.Fatalf("expected replaced item set, got %+v", updatedProposal.Items)
		}

		if _, err := models.DeleteProposal(ctxA, proposal.ID); err != nil {
			t.Fatalf("delete proposal: %v", err)
		}
	})

	t.Run("opportunity delete removes its attachment rows", func(t *testing.T) {
		bareOpp, err := models.CreateOpportunity(ctxA, &models.NewOpportunity{
			CompanyId: companyA.ID,
			Title:     "Paperwork only",
		})
		if err != nil {
			t.Fatalf("create opportunity: %v", err)
		}
		if _, err := models.CreateAttachment(ctxA, &models.NewAttachment{
			OwnerType: models.AttachmentOwnerOpportunity,
			OwnerId:   bareOpp.ID,
			FileName:  "brief.pdf",
			FileUrl:   "https://storage.example.com/" + tenantA.ID.String() + "/opportunity/brief.pdf",
		}); err != nil {
			t.Fatalf("create attachment: %v", err)
		}

		if _, err := models.DeleteOpportunity(ctxA, bareOpp.ID); err != nil {
			t.Fatalf("delete opportunity: %v", err)
		}

		var count int64
		err = config.GetDB().Model(&models.Attachment{}).
			Where("tenant_id = ? AND owner_type = ? AND owner_id = ?",
				tenantA.ID.String(), models.AttachmentOwnerOpportunity, bareOpp.ID).
			Count(&count).Error
		if err != nil {
			t.Fatalf("count attachments: %v", err)
		}
		if count != 0 {
			t.Fatalf("expected attachment rows cleaned up, found %d", count)
		}
	})
}

func tenantContext(tenantId string) context.Context {
	ctx := utils.SetTenantIdInContext(context.Background(), tenantId)
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Tester")
	return ctx
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("crm-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("crm-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=crm_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
