package main

import (
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/viney-shih/goroutines"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/database/redisclient"
	"github.com/x-xyz/auctionhouse/base/goroutine"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/base/metrics"
	bValidator "github.com/x-xyz/auctionhouse/base/validator"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/keys"
	"github.com/x-xyz/auctionhouse/domain/registry"
	"github.com/x-xyz/auctionhouse/domain/token"
	mmiddleware "github.com/x-xyz/auctionhouse/middleware"
	"github.com/x-xyz/auctionhouse/service/cache"
	"github.com/x-xyz/auctionhouse/service/cache/provider/compound"
	"github.com/x-xyz/auctionhouse/service/cache/provider/primitive"
	redisProvider "github.com/x-xyz/auctionhouse/service/cache/provider/redis"
	"github.com/x-xyz/auctionhouse/service/chain"
	"github.com/x-xyz/auctionhouse/service/chain/contract"
	"github.com/x-xyz/auctionhouse/service/ens"
	"github.com/x-xyz/auctionhouse/service/network"
	"github.com/x-xyz/auctionhouse/service/redis"
	access_delivery "github.com/x-xyz/auctionhouse/stores/access/delivery/http"
	access_usecase "github.com/x-xyz/auctionhouse/stores/access/usecase"
	account_delivery "github.com/x-xyz/auctionhouse/stores/account/delivery/http"
	account_usecase "github.com/x-xyz/auctionhouse/stores/account/usecase"
	auction_delivery "github.com/x-xyz/auctionhouse/stores/auction/delivery/http"
	auction_usecase "github.com/x-xyz/auctionhouse/stores/auction/usecase"
	auth_delivery "github.com/x-xyz/auctionhouse/stores/auth/delivery/http"
	auth_middleware "github.com/x-xyz/auctionhouse/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/x-xyz/auctionhouse/stores/auth/usecase"
	ens_delivery "github.com/x-xyz/auctionhouse/stores/ens/delivery/http"
	event_delivery "github.com/x-xyz/auctionhouse/stores/event/delivery/http"
	event_repository "github.com/x-xyz/auctionhouse/stores/event/repository"
	hc_delivery "github.com/x-xyz/auctionhouse/stores/healthcheck/delivery/http"
	hc_repo "github.com/x-xyz/auctionhouse/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/auctionhouse/stores/healthcheck/usecase"
	ledger_delivery "github.com/x-xyz/auctionhouse/stores/ledger/delivery/http"
	ledger_usecase "github.com/x-xyz/auctionhouse/stores/ledger/usecase"
	payment_usecase "github.com/x-xyz/auctionhouse/stores/payment/usecase"
	registry_delivery "github.com/x-xyz/auctionhouse/stores/registry/delivery/http"
	registry_usecase "github.com/x-xyz/auctionhouse/stores/registry/usecase"
	royalty_delivery "github.com/x-xyz/auctionhouse/stores/royalty/delivery/http"
	royalty_usecase "github.com/x-xyz/auctionhouse/stores/royalty/usecase"
	token_delivery "github.com/x-xyz/auctionhouse/stores/token/delivery/http"
	token_repository "github.com/x-xyz/auctionhouse/stores/token/repository"

	_ "github.com/x-xyz/auctionhouse/app/api/docs"
)

func init() {
	pflag.String("config", "infra/configs/config.yaml", "path of the yaml config")
	pflag.Parse()
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		panic(err)
	}

	viper.SetConfigType("yaml")
	viper.SetConfigFile(viper.GetString("config"))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if err := log.Init(viper.GetBool(`debug`)); err != nil {
		panic(err)
	}
	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

//	@title			Auction House API
//	@version		1.0
//	@description	Escrow English auctions, royalty splitters and pull payments.

// main
//
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description				retrive token from #/auth/post_auth_sign and apply with `bearer {token}`
func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(bValidator.New())

	context := ctx.Background()

	// init Redis service, optional
	var redisCache redis.Service
	if uri := viper.GetString("redis.uri"); uri != "" {
		context.Info("init redis cache")
		redisCachePool := redisclient.MustConnectRedis(uri, viper.GetString("redis.password"), redisclient.RedisParam{
			PoolMultiplier: viper.GetFloat64("redis.poolMultiplier"),
			Retry:          true,
		})
		redisCache = redis.New("cache", metrics.New("cache"), &redis.Pools{
			Src: redisCachePool,
		})
	}
	localCache := primitive.NewPrimitive("local", 64)
	cacheProvider := localCache
	if redisCache != nil {
		cacheProvider = compound.NewCompound(localCache, redisProvider.NewRedis(redisCache))
	}

	store, err := newStorage(context, cacheProvider)
	if err != nil {
		context.WithField("err", err).Panic("newStorage failed")
	}

	// events: journal, optional redis publisher, optionally dispatched by a worker pool
	var pool *goroutines.Pool
	sink := newEventSink(context, store, redisCache, &pool)

	engineAddress := domain.Address(viper.GetString("auction.address")).ToLower()
	treasury := domain.Address(viper.GetString("auction.treasury")).ToLower()

	access := access_usecase.New(&access_usecase.Config{
		Address: engineAddress,
		Admins:  toAddresses(viper.GetStringSlice("admin.addresses")),
		Minters: toAddresses(viper.GetStringSlice("minter.addresses")),
		Sink:    sink,
	})
	net := network.New(&network.Config{Accounts: store.accounts})
	sender := payment_usecase.New(&payment_usecase.Config{
		Network: net,
		Stipend: viper.GetUint64("payment.gasStipend"),
	})

	engineLedger := ledger_usecase.New(&ledger_usecase.Config{
		Holder: engineAddress,
		Repo:   store.ledgers,
		Sender: sender,
		Access: access,
	})
	ledgers := ledger_usecase.NewDirectory()
	ledgers.Add(engineLedger)

	tokens := token_repository.NewDirectory(loadTokens(context)...)

	splitters := royalty_usecase.NewFactory(&royalty_usecase.Config{
		Address:    domain.Address(viper.GetString("splitter.deployer")).ToLower(),
		Repo:       store.splitters,
		Network:    net,
		Sender:     sender,
		Access:     access,
		LedgerRepo: store.ledgers,
		Ledgers:    ledgers,
		Tokens:     tokens,
		Sink:       sink,
		GasReserve: viper.GetUint64("splitter.gasReserve"),
	})
	if err := splitters.Load(context); err != nil {
		context.WithField("err", err).Panic("splitters.Load failed")
	}

	reg := registry_usecase.New(&registry_usecase.Config{
		Repo:         store.assets,
		Access:       access,
		Operators:    []domain.Address{engineAddress},
		Splitters:    splitters,
		Treasury:     treasury,
		MintApproved: engineAddress,
		Verifier:     newVerifier(context),
	})

	engine, err := auction_usecase.New(&auction_usecase.Config{
		Address:  engineAddress,
		Treasury: treasury,
		FeeBps:   uint16(viper.GetUint("auction.feeBps")),
		Repo:     store.auctions,
		Registry: reg,
		Network:  net,
		Sender:   sender,
		Ledger:   engineLedger,
		Access:   access,
		Sink:     sink,
	})
	if err != nil {
		context.WithField("err", err).Panic("auction_usecase.New failed")
	}

	accounts := account_usecase.New(&account_usecase.Config{
		Repo:   store.accounts,
		Access: access,
		Faucet: viper.GetBool("network.faucet") && store.driver == driverMemory,
	})

	var ensService ens.ENS
	if rpc := viper.GetString("ens.rpcUrl"); rpc != "" {
		client, err := ethclient.Dial(rpc)
		if err != nil {
			context.WithField("err", err).Warn("ens disabled, failed to dial rpc")
		} else {
			ensService = ens.New(ens.NewBackend(client), cache.New(cache.Config{
				TTL:      7 * 24 * time.Hour,
				Prefix:   keys.PfxEns,
				Provider: cacheProvider,
			}))
		}
	}

	auth := auth_usecase.New(&auth_usecase.Config{
		JwtSecret:          viper.GetString("auth.jwtSecret"),
		SigningMsgTemplate: viper.GetString("auth.signatureMsg"),
		Nonces: cache.New(cache.Config{
			TTL:      10 * time.Minute,
			Prefix:   keys.PfxNonce,
			Provider: cacheProvider,
		}),
	})
	authMiddleware := auth_middleware.New(auth, access)

	hc := hc_usecase.New(hc_repo.New(store.query, redisCache), engine)

	hc_delivery.New(e, hc)
	auth_delivery.New(e, auth, viper.GetString("auth.signatureMsg"))
	access_delivery.New(e, access, authMiddleware)
	account_delivery.New(e, accounts, authMiddleware)
	registry_delivery.New(e, reg, authMiddleware)
	auction_delivery.New(e, engine, ensService, authMiddleware)
	ledger_delivery.New(e, ledgers, authMiddleware)
	royalty_delivery.New(e, splitters, net, authMiddleware)
	token_delivery.New(e, tokens, authMiddleware)
	event_delivery.New(e, store.events, mmiddleware.CacheHttp(localCache, time.Second))
	if ensService != nil {
		ens_delivery.New(e, ensService)
	}

	if viper.GetString("metrics.backend") == metrics.BackendPrometheus {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	goroutine.RecoverableGo(func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}, goroutine.WithName("http server"))

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	shutdownCtx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
	if pool != nil {
		// drains queued events
		pool.Release()
	}
	_ = log.Sync()
}

func toAddresses(ss []string) []domain.Address {
	res := make([]domain.Address, 0, len(ss))
	for _, s := range ss {
		res = append(res, domain.Address(s).ToLower())
	}
	return res
}

// newEventSink journals events in storage and fans them out to redis when enabled
func newEventSink(c ctx.Ctx, store *storage, redisCache redis.Service, pool **goroutines.Pool) domain.EventSink {
	sinks := []domain.EventSink{}
	if viper.GetBool("events.journal") {
		sinks = append(sinks, store.events)
	}
	if viper.GetBool("events.publish") {
		if redisCache == nil {
			c.Warn("events.publish needs redis, publisher disabled")
		} else {
			sinks = append(sinks, event_repository.NewPublisher(redisCache, viper.GetString("redis.channel")))
		}
	}

	sink := event_repository.NewFanout(sinks...)
	if workers := viper.GetInt("events.workers"); workers > 0 {
		*pool = goroutines.NewPool(workers)
		sink = event_repository.NewAsync(sink, *pool)
	}
	return sink
}

// loadTokens registers the configured fungible tokens
func loadTokens(c ctx.Ctx) []token.Token {
	type tokenCfg struct {
		Address string `mapstructure:"address"`
		Symbol  string `mapstructure:"symbol"`
	}
	cfgs := []tokenCfg{}
	if err := viper.UnmarshalKey("tokens", &cfgs); err != nil {
		c.WithField("err", err).Panic("viper.UnmarshalKey tokens failed")
	}
	res := []token.Token{}
	for _, t := range cfgs {
		res = append(res, token_repository.NewMemory(domain.Address(t.Address), t.Symbol))
	}
	return res
}

// newVerifier reads ERC721 ownerOf when chain.verifyOwnership is on
func newVerifier(c ctx.Ctx) registry.OwnershipVerifier {
	if !viper.GetBool("chain.verifyOwnership") {
		return nil
	}
	chainId := viper.GetInt32("chain.chainId")
	client, err := chain.NewClient(c, &chain.ClientCfg{
		RpcUrls:       map[int32]string{chainId: viper.GetString("chain.rpcUrl")},
		MaxConcurrent: viper.GetInt("chain.maxConcurrent"),
		Attempts:      viper.GetInt("chain.attempts"),
	})
	if err != nil {
		c.WithField("err", err).Warn("ownership verification disabled, chain.NewClient failed")
		return nil
	}
	return contract.NewErc721(client, chainId, domain.Address(viper.GetString("chain.collection")))
}
