package router

import (
	"time"

	"pdv/internal/config"
	"pdv/internal/handler"
	"pdv/internal/infra"
	"pdv/internal/middleware"
	"pdv/internal/repository"
	"pdv/internal/service"
	"pdv/internal/store"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// Deps carries the clients built in cmd/server.
type Deps struct {
	Store store.Store
	// Redis is optional; nil disables receipts and Idempotency-Key handling.
	Redis      *redis.Client
	Dispatcher service.ReciboDispatcher
	Metrics    *infra.Metrics
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← Store/Redis
func New(cfg *config.Config, deps Deps) (*gin.Engine, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	if cfg.RateLimitPorMinuto > 0 {
		r.Use(middleware.RateLimiter(cfg.RateLimitPorMinuto, time.Minute))
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	repos := repository.New(deps.Store)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(repos.Usuarios, cfg.JWTSecret, time.Duration(cfg.JWTExpirationMinutes)*time.Minute)
	produtoSvc := service.NewProdutoService(repos.Produtos)
	caixaSvc := service.NewCaixaService(repos.Caixa)
	vendaSvc, err := service.NewVendaService(deps.Store, service.VendaConfig{
		Modo:              cfg.VendaModo,
		TentativasEstoque: cfg.VendaTentativasEstoque,
	}, deps.Dispatcher, deps.Metrics)
	if err != nil {
		return nil, err
	}

	// ── Handlers ─────────────────────────────────────────────────────────────
	var idems handler.IdempotencyStore
	var rdb redis.UniversalClient
	if deps.Redis != nil {
		idems = infra.NewIdempotencyStore(deps.Redis, idempotencyTTL)
		rdb = deps.Redis
	}
	var pinger handler.Pinger
	if p, ok := deps.Store.(handler.Pinger); ok {
		pinger = p
	}

	authH := handler.NewAuthHandler(authSvc)
	produtosH := handler.NewProdutosHandler(produtoSvc)
	vendasH := handler.NewVendasHandler(vendaSvc, idems)
	caixaH := handler.NewCaixaHandler(caixaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(pinger, rdb))
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	r.POST("/cadastro", authH.Cadastrar)
	r.POST("/login", middleware.LoginRateLimiter(), authH.Login)

	// Protected routes
	api := r.Group("", middleware.JWTAuth(authSvc))
	{
		api.GET("/usuario/perfil", authH.Perfil)
		api.PUT("/usuario/senha", authH.AlterarSenha)

		prods := api.Group("/produtos")
		{
			prods.POST("", produtosH.Criar)
			prods.GET("", produtosH.Listar)
			prods.GET("/:id", produtosH.ObterPorID)
			prods.PUT("/:id", produtosH.Atualizar)
			prods.DELETE("/:id", produtosH.Excluir)
		}

		vendas := api.Group("/vendas")
		{
			vendas.POST("", vendasH.CriarVenda)
			vendas.GET("", vendasH.ListarVendas)
			vendas.GET("/:id", vendasH.ObterVenda)
		}

		caixa := api.Group("/caixa")
		{
			caixa.POST("/movimentacao", caixaH.RegistrarMovimentacao)
			caixa.GET("/movimentacoes", caixaH.ListarMovimentacoes)
			caixa.GET("/saldo", caixaH.Saldo)
		}
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, nil
}
