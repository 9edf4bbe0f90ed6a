package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/you/hostelauth/domain"
	"github.com/you/hostelauth/internal/config"
	"github.com/you/hostelauth/internal/infrastructure/auth"
	"github.com/you/hostelauth/internal/infrastructure/database"
	"github.com/you/hostelauth/internal/infrastructure/notifications"
	"github.com/you/hostelauth/internal/infrastructure/repositories"
	"github.com/you/hostelauth/internal/logging"
	"github.com/you/hostelauth/internal/services"
)

// Container holds all dependencies
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Mongo *mongo.Client

	AccountRepo domain.AccountRepository

	PasswordSvc domain.PasswordService
	TokenSvc    domain.TokenService
	OTPSvc      domain.OTPService
	ResetSvc    domain.ResetTokenService
	Mailer      domain.Mailer
	AuthSvc     domain.AuthService
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logging.New("logs"),
	}

	client, err := database.Connect(context.Background(), cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	c.Mongo = client

	db := client.Database(cfg.MongoDB)
	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	c.AccountRepo = repositories.NewAccountRepository(db.Collection(database.AccountCollection))

	c.PasswordSvc = auth.NewPasswordService()
	c.TokenSvc = auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL)
	c.OTPSvc = services.NewOTPService(cfg.OTPTTL)
	c.ResetSvc = services.NewResetTokenService(cfg.ResetTTL)
	c.Mailer = notifications.NewSMTPService(notifications.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		From:     cfg.SMTPFrom,
		Password: cfg.SMTPPassword,
	}, c.Logger)

	c.AuthSvc = services.NewAuthService(
		c.AccountRepo,
		c.PasswordSvc,
		c.TokenSvc,
		c.OTPSvc,
		c.ResetSvc,
		c.Mailer,
		cfg.ValidationRules(),
		cfg.FrontendURL,
		c.Logger,
	)

	return c, nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Mongo != nil {
		return c.Mongo.Disconnect(context.Background())
	}
	return nil
}
