package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/rohn-shah/diode-be/config"
	"github.com/rohn-shah/diode-be/pkg/helpers"
	"github.com/rohn-shah/diode-be/pkg/mailer"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	mongoDB     *mongodriver.Database
	redisClient *redis.Client
	gcsClient   *storage.Client

	jwtManager *helpers.JWTManager

	mailSender mailer.Sender
	esClient   *elasticsearch.Client
)

func SetConfig(c *config.Config)        { cfg = c }
func GetConfig() *config.Config         { return cfg }
func SetLogger(l *logrus.Logger)        { logger = l }
func GetLogger() *logrus.Logger         { return logger }
func SetMongo(db *mongodriver.Database) { mongoDB = db }
func GetMongo() *mongodriver.Database   { return mongoDB }
func SetRedis(r *redis.Client)          { redisClient = r }
func GetRedis() *redis.Client           { return redisClient }
func SetGCS(s *storage.Client)          { gcsClient = s }
func GetGCS() *storage.Client           { return gcsClient }
func SetJWT(m *helpers.JWTManager)      { jwtManager = m }

func SetMailSender(s mailer.Sender) { mailSender = s }
func SetES(c *elasticsearch.Client) { esClient = c }
func GetES() *elasticsearch.Client  { return esClient }

func GetJWT() *helpers.JWTManager {
	if jwtManager == nil && cfg != nil {
		jwtManager = helpers.NewJWTManager(cfg.JWTSecret, cfg.AccessTTL)
	}
	return jwtManager
}

// GetMailSender falls back to logging when no provider was configured.
func GetMailSender() mailer.Sender {
	if mailSender == nil {
		return mailer.NewLogSender(logger)
	}
	return mailSender
}

// MailSettings maps configuration onto mailer settings for the given provider.
func MailSettings(c *config.Config, provider string) mailer.Settings {
	return mailer.Settings{
		Provider:           provider,
		Enabled:            c.MailSendEnabled,
		From:               c.EmailFrom,
		EmailUser:          c.EmailUser,
		EmailPassword:      c.EmailPassword,
		SMTPHost:           c.SMTPHost,
		SMTPPort:           c.SMTPPort,
		SMTPUser:           c.SMTPUser,
		SMTPPassword:       c.SMTPPassword,
		SMTPSecure:         c.SMTPSecure,
		SendGridAPIKey:     c.SendGridAPIKey,
		MailgunDomain:      c.MailgunDomain,
		MailgunAPIKey:      c.MailgunAPIKey,
		MailgunSender:      c.MailgunSender,
		SESRegion:          c.AWSRegion,
		SESAccessKeyID:     c.AWSAccessKeyID,
		SESSecretAccessKey: c.AWSSecretAccessKey,
	}
}
