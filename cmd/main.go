package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
	"github.com/mongonsh/simple-voice-assistant/application/services"
	"github.com/mongonsh/simple-voice-assistant/config"
	"github.com/mongonsh/simple-voice-assistant/infrastructure/adapters"
	"github.com/mongonsh/simple-voice-assistant/infrastructure/gin_interface/controllers"
	"github.com/mongonsh/simple-voice-assistant/middleware"
	"github.com/mongonsh/simple-voice-assistant/mock"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatal().Err(err).Msg("Failed to load .env file")
	}

	serverConfig, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get server config")
	}

	anthropicConfig, err := config.GetAnthropicConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get anthropic config")
	}

	elevenLabsConfig, err := config.GetElevenLabsConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get eleven labs config")
	}

	chatConfig, err := config.GetChatConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get chat config")
	}

	audioStoreConfig, err := config.GetAudioStoreConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get audio store config")
	}

	dynamoConfig, err := config.GetDynamoConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get dynamo config")
	}

	zeroLogger := adapters.NewZerologWrapper(serverConfig.LogLevel)

	panicHandler := func(p interface{}) {
		zeroLogger.Error(fmt.Errorf("%v", p), "Panic in worker pool")
	}

	workerPool, err := ants.NewPool(serverConfig.WorkerPoolSize, ants.WithPanicHandler(panicHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker pool")
	}
	defer workerPool.Release()

	httpClient := &http.Client{Timeout: serverConfig.UpstreamTimeout}

	var (
		textGenerator     outbound.TextGeneratorPort
		speechSynthesizer outbound.SpeechSynthesizerPort
		voiceCatalog      outbound.VoiceCatalogPort
	)
	if config.MockMode() {
		mocks := mock.Init(zeroLogger)
		textGenerator = mocks.TextGenerator
		speechSynthesizer = mocks.SpeechSynthesizer
		voiceCatalog = mocks.VoiceCatalog
	} else {
		textGenerator = adapters.NewClaudeTextGenerator(httpClient, anthropicConfig, zeroLogger)
		speechSynthesizer = adapters.NewElevenLabsSpeechSynthesizer(httpClient, elevenLabsConfig, zeroLogger)
		voiceCatalog = adapters.NewElevenLabsVoiceCatalog(httpClient, elevenLabsConfig, zeroLogger)
	}

	var sess *session.Session
	awsSession := func(region string) *session.Session {
		if sess == nil {
			options := session.Options{SharedConfigState: session.SharedConfigEnable}
			if region != "" {
				options.Config = aws.Config{Region: aws.String(region)}
			}
			sess = session.Must(session.NewSessionWithOptions(options))
		}
		return sess
	}

	var audioStore outbound.AudioStorePort
	switch audioStoreConfig.Backend {
	case config.S3AudioStore:
		audioStore = adapters.NewS3AudioStore(s3.New(awsSession(audioStoreConfig.Region)), audioStoreConfig, zeroLogger)
	default:
		audioStore, err = adapters.NewFsAudioStore(audioStoreConfig.Dir, zeroLogger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create audio directory")
		}
	}

	exchangeRecorder := adapters.NewNoopExchangeRecorder()
	if dynamoConfig.Enabled() {
		exchangeRecorder = adapters.NewDynamoExchangeRecorder(zeroLogger, dynamodb.New(awsSession(audioStoreConfig.Region)), dynamoConfig)
	}

	metrics := adapters.NewPrometheusMetrics()

	speechRenderer := services.NewSpeechRenderer(zeroLogger, speechSynthesizer, audioStore, elevenLabsConfig.VoiceConfig(), chatConfig.SpeechEnabled)

	chatOrchestrator := services.NewChatOrchestrator(zeroLogger, textGenerator, speechRenderer, exchangeRecorder, workerPool, metrics,
		chatConfig, serverConfig.PublicBaseUrl)

	chatController := controllers.NewChatController(zeroLogger, chatOrchestrator)
	audioController := controllers.NewAudioController(zeroLogger, audioStore)
	voicesController := controllers.NewVoicesController(zeroLogger, voiceCatalog)
	healthController := controllers.NewHealthController(metrics.Handler())

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	err = router.SetTrustedProxies(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set trusted proxies!")
	}

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware(zeroLogger))
	router.Use(middleware.CORSMiddleware())

	if serverConfig.JwksUrl != "" {
		authHandler, err := middleware.NewAuthHandler(serverConfig.JwksUrl, zeroLogger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create auth handler!")
		}
		defer authHandler.Close()
		router.Use(authHandler.AuthMiddleware())
	}

	chatController.RegisterRoutes(router)
	audioController.RegisterRoutes(router)
	voicesController.RegisterRoutes(router)
	healthController.RegisterRoutes(router)

	server := &http.Server{
		Addr:              serverConfig.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zeroLogger.InfoWithFields("Voice relay listening", map[string]interface{}{
			"addr":       server.Addr,
			"public_url": serverConfig.PublicBaseUrl,
			"mock_mode":  config.MockMode(),
			"audio":      audioStoreConfig.Backend,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server!")
		}
	}()

	<-ctx.Done()
	zeroLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zeroLogger.Error(err, "Server shutdown failed")
	}
}
