package api

import (
	"fmt"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/gorm/xp-engine/docs"
	v1 "github.com/yizeng/gab/gin/gorm/xp-engine/internal/api/handler/v1"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/api/middleware"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/config"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/notify"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/progress"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/repository"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/repository/dao"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	// XP is kept so configuration reloads can reach it.
	XP *service.XpService

	dispatcher notify.Dispatcher
	tracker    *progress.Tracker
	logger     *zap.Logger
}

type handlers struct {
	season      *v1.SeasonHandler
	xp          *v1.XpHandler
	grant       *v1.GrantHandler
	achievement *v1.AchievementHandler
	leaderboard *v1.LeaderboardHandler
	operation   *v1.OperationHandler
}

func NewServer(conf *config.AppConfig, db *gorm.DB, dispatcher notify.Dispatcher, tracker *progress.Tracker) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config:     conf,
		Router:     engine,
		dispatcher: dispatcher,
		tracker:    tracker,
		logger:     zap.L(),
	}

	s.MountMiddlewares()

	h, err := s.initHandlers(db)
	if err != nil {
		return nil, err
	}
	s.MountHandlers(h)

	return s, nil
}

// initHandlers wires dao -> repository -> service -> handler.
func (s *Server) initHandlers(db *gorm.DB) (handlers, error) {
	tx := repository.NewTransactor(dao.NewTxDAO(db))
	seasonRepo := repository.NewSeasonRepository(dao.NewSeasonDAO(db))
	ledgerRepo := repository.NewLedgerRepository(dao.NewXpEventDAO(db))
	grantRepo := repository.NewGrantRepository(dao.NewXpTypeDAO(db), dao.NewXpGrantDAO(db), dao.NewGrantLimitDAO(db))
	achievementRepo := repository.NewAchievementRepository(dao.NewAchievementDAO(db))
	directory := repository.NewDirectoryRepository(dao.NewDirectoryDAO(db))

	seasonSvc := service.NewSeasonService(tx, seasonRepo, ledgerRepo, s.logger.Named("season"))
	ledgerSvc := service.NewLedgerService(tx, ledgerRepo, seasonSvc, s.logger.Named("ledger"))
	leaderboardSvc := service.NewLeaderboardService(ledgerRepo)
	achievementSvc := service.NewAchievementService(tx, achievementRepo, ledgerSvc, directory, leaderboardSvc, seasonSvc,
		s.Config.Achievements.MaxIterations, s.logger.Named("achievement"))
	xpSvc := service.NewXpService(ledgerSvc, ledgerRepo, achievementSvc, directory, seasonSvc, s.logger.Named("xp"))
	if err := xpSvc.Configure(s.Config.XP.EvaluationPoints, s.Config.XP.LevelStep); err != nil {
		return handlers{}, fmt.Errorf("xpSvc.Configure -> %w", err)
	}
	grantSvc := service.NewGrantService(tx, grantRepo, ledgerSvc, achievementSvc, directory, seasonSvc, directory,
		xpSvc.LevelStep, s.logger.Named("grant"))
	s.XP = xpSvc

	return handlers{
		season:      v1.NewSeasonHandler(seasonSvc),
		xp:          v1.NewXpHandler(xpSvc, s.dispatcher, s.logger),
		grant:       v1.NewGrantHandler(grantSvc, s.tracker, s.dispatcher, s.logger),
		achievement: v1.NewAchievementHandler(achievementSvc),
		leaderboard: v1.NewLeaderboardHandler(leaderboardSvc),
		operation:   v1.NewOperationHandler(s.tracker),
	}, nil
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(h handlers) {
	const basePath = "/api/v1"

	api := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		api.GET("/seasons", h.season.HandleListSeasons)
		api.GET("/seasons/active", h.season.HandleGetActiveSeason)
		api.GET("/seasons/:seasonID", h.season.HandleGetSeason)
		api.POST("/seasons", h.season.HandleCreateSeason)
		api.PUT("/seasons/:seasonID", h.season.HandleUpdateSeason)
		api.PATCH("/seasons/:seasonID/multiplier", h.season.HandleSetMultiplier)
		api.POST("/seasons/:seasonID/activate", h.season.HandleActivateSeason)
		api.POST("/seasons/:seasonID/deactivate", h.season.HandleDeactivateSeason)
		api.DELETE("/seasons/:seasonID", h.season.HandleDeleteSeason)

		api.POST("/xp/events", h.xp.HandleRecordXP)
		api.POST("/xp/events/:eventID/compensate", h.xp.HandleCompensate)
		api.POST("/xp/evaluations/:evaluationID", h.xp.HandleRecordEvaluationXP)

		api.GET("/attendants/:attendantID/xp", h.xp.HandleGetSummary)
		api.GET("/attendants/:attendantID/events", h.xp.HandleListEvents)
		api.GET("/attendants/:attendantID/grants", h.grant.HandleListAttendantGrants)
		api.GET("/attendants/:attendantID/achievements", h.achievement.HandleGetUnlocked)

		api.POST("/grants", h.grant.HandleGrant)
		api.POST("/grants/bulk", h.grant.HandleBulkGrant)
		api.GET("/grants/usage", h.grant.HandleGetDailyUsage)
		api.GET("/grant-limits", h.grant.HandleGetLimits)
		api.PUT("/grant-limits", h.grant.HandleUpdateLimits)

		api.GET("/xp-types", h.grant.HandleListTypes)
		api.GET("/xp-types/:typeID", h.grant.HandleGetType)
		api.POST("/xp-types", h.grant.HandleCreateType)
		api.PUT("/xp-types/:typeID", h.grant.HandleUpdateType)
		api.PATCH("/xp-types/:typeID/active", h.grant.HandleSetTypeActive)

		api.GET("/achievements", h.achievement.HandleListAchievements)
		api.GET("/achievements/:achievementID", h.achievement.HandleGetAchievement)
		api.POST("/achievements", h.achievement.HandleCreateAchievement)
		api.PUT("/achievements/:achievementID", h.achievement.HandleUpdateAchievement)
		api.PATCH("/achievements/:achievementID/active", h.achievement.HandleSetAchievementActive)

		api.GET("/leaderboard", h.leaderboard.HandleGetLeaderboard)
		api.GET("/operations/:operationID", h.operation.HandleGetOperation)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "XP gamification API"
	docs.SwaggerInfo.Description = "Seasons, XP ledger, manual grants, achievements and leaderboard."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
