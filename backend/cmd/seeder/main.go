// ============================================================================
// backend/cmd/seeder/main.go
// Mints tokens for the demo accounts and warms their persisted dashboards
// ============================================================================

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"portal_dashboard/backend/internal/dashboard"
	"portal_dashboard/backend/internal/logger"
	"portal_dashboard/backend/internal/portalapi"
	"portal_dashboard/backend/internal/session"
	"portal_dashboard/backend/internal/shared"
	"portal_dashboard/backend/internal/store"
)

// Demo accounts known to the development portal
const (
	AdminID1   = "admin-001"
	FacultyID1 = "faculty-001"
	FacultyID2 = "faculty-002"
	StudentID1 = "student-001"
	StudentID2 = "student-002"
	StudentID3 = "student-003"

	tokenLifetime = 24 * time.Hour
)

// AccountSeed describes one demo account
type AccountSeed struct {
	ID    string
	Name  string
	Email string
	Role  shared.Role
}

var accounts = []AccountSeed{
	{ID: AdminID1, Name: "Ada Admin", Email: "admin@example.com", Role: shared.RoleAdmin},
	{ID: FacultyID1, Name: "Dr. Alan Turing", Email: "faculty@example.com", Role: shared.RoleTeacher},
	{ID: FacultyID2, Name: "Dr. Grace Hopper", Email: "faculty2@example.com", Role: shared.RoleTeacher},
	{ID: StudentID1, Name: "John Student", Email: "student@example.com", Role: shared.RoleStudent},
	{ID: StudentID2, Name: "Alice Wonderland", Email: "student2@example.com", Role: shared.RoleStudent},
	{ID: StudentID3, Name: "Bob Builder", Email: "student3@example.com", Role: shared.RoleStudent},
}

func main() {
	_ = shared.LoadEnv(".env")

	cfg, err := shared.LoadGatewayConfig()
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Init(&cfg.ServiceConfig)
	log := logger.Log.WithField("service", "seeder")

	if !cfg.MongoDB.Enabled() {
		log.Fatal("MONGO_URI is required to persist seeded dashboards")
	}

	client, db, err := shared.ConnectMongoDB(&cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer shared.DisconnectMongoDB(client)

	bundles := store.NewMongoStore(db, cfg.Store.Collection)
	if err := bundles.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("Failed to create bundle indexes: %v", err)
	}

	verifier := session.NewVerifier(cfg.Security.JWTSecret, cfg.Security.JWTIssuer)
	source := portalapi.NewClient(cfg.PortalAPI, portalapi.WithLogger(log))
	service := dashboard.NewService(dashboard.NewBuilder(source, log), bundles, nil, log)

	log.Info("Seeding demo sessions...")

	warmed := 0
	for _, acc := range accounts {
		token, err := mintToken(verifier, acc)
		if err != nil {
			log.Fatalf("Failed to sign token for %s: %v", acc.ID, err)
		}
		fmt.Printf("%-12s %-8s %s\n", acc.ID, acc.Role, token)

		sess, err := verifier.Verify(token)
		if err != nil {
			log.Fatalf("Minted token for %s does not verify: %v", acc.ID, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.PortalAPI.Timeout*3)
		view, err := service.Refresh(ctx, sess, acc.Role)
		cancel()
		if err != nil {
			log.WithError(err).WithField("user", acc.ID).Warn("Could not warm dashboard")
			continue
		}

		warmed++
		log.WithFields(logrus.Fields{
			"user":    acc.ID,
			"role":    acc.Role,
			"sources": view.Data.Sources,
		}).Info("Dashboard warmed")
	}

	log.WithFields(logrus.Fields{
		"accounts": len(accounts),
		"warmed":   warmed,
	}).Info("Seeding complete")
}

func mintToken(verifier *session.Verifier, acc AccountSeed) (string, error) {
	now := time.Now()
	return verifier.Sign(session.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
		Name:  acc.Name,
		Email: acc.Email,
		Role:  string(acc.Role),
	})
}
