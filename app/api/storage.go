package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/database/mongoclient"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/account"
	"github.com/x-xyz/auctionhouse/domain/auction"
	"github.com/x-xyz/auctionhouse/domain/keys"
	"github.com/x-xyz/auctionhouse/domain/ledger"
	"github.com/x-xyz/auctionhouse/domain/registry"
	"github.com/x-xyz/auctionhouse/domain/royalty"
	"github.com/x-xyz/auctionhouse/service/cache"
	"github.com/x-xyz/auctionhouse/service/cache/provider"
	"github.com/x-xyz/auctionhouse/service/query"
	account_repository "github.com/x-xyz/auctionhouse/stores/account/repository"
	auction_repository "github.com/x-xyz/auctionhouse/stores/auction/repository"
	event_repository "github.com/x-xyz/auctionhouse/stores/event/repository"
	ledger_repository "github.com/x-xyz/auctionhouse/stores/ledger/repository"
	registry_repository "github.com/x-xyz/auctionhouse/stores/registry/repository"
	royalty_repository "github.com/x-xyz/auctionhouse/stores/royalty/repository"
)

const (
	driverMemory = "memory"
	driverMongo  = "mongo"
)

// storage holds every repository of one storage driver
type storage struct {
	driver string
	// query is nil on the memory driver
	query query.Mongo

	accounts  account.Repo
	assets    registry.Repo
	auctions  auction.Repo
	ledgers   ledger.Repo
	splitters royalty.Repo
	events    domain.EventRepo
}

func newMemoryStorage() *storage {
	return &storage{
		driver:    driverMemory,
		accounts:  account_repository.NewMemory(),
		assets:    registry_repository.NewMemory(),
		auctions:  auction_repository.NewMemory(),
		ledgers:   ledger_repository.NewMemory(),
		splitters: royalty_repository.NewMemory(),
		events:    event_repository.NewMemory(),
	}
}

// newMongoStorage connects to mongo and ensures the indexes. Auction reads go through cacheProvider.
func newMongoStorage(c ctx.Ctx, cacheProvider provider.Provider) (*storage, error) {
	mongoClient := mongoclient.MustConnectMongoClient(mongoclient.Config{
		URI:            viper.GetString("mongo.uri"),
		AuthDBName:     viper.GetString("mongo.authDBName"),
		DBName:         viper.GetString("mongo.dbName"),
		SSL:            viper.GetBool("mongo.enableSSL"),
		SetSafe:        true,
		PoolMultiplier: 2,
	})
	q := query.New(mongoClient, viper.GetBool("mongo.checkIndex"))

	auctions, err := auction_repository.New(c, q)
	if err != nil {
		return nil, err
	}
	ledgers, err := ledger_repository.New(c, q)
	if err != nil {
		return nil, err
	}
	splitters, err := royalty_repository.New(c, q)
	if err != nil {
		return nil, err
	}
	events, err := event_repository.New(c, q)
	if err != nil {
		return nil, err
	}

	return &storage{
		driver:   driverMongo,
		query:    q,
		accounts: account_repository.New(q),
		assets:   registry_repository.New(q),
		auctions: auction_repository.NewCached(auctions, cache.New(cache.Config{
			TTL:      viper.GetDuration("auction.cacheTTL"),
			Prefix:   keys.PfxAuction,
			Provider: cacheProvider,
		})),
		ledgers:   ledgers,
		splitters: splitters,
		events:    events,
	}, nil
}

func newStorage(c ctx.Ctx, cacheProvider provider.Provider) (*storage, error) {
	switch driver := viper.GetString("storage.driver"); driver {
	case driverMongo:
		c.Info("init mongo")
		return newMongoStorage(c, cacheProvider)
	case driverMemory, "":
		c.Info("init memory storage")
		return newMemoryStorage(), nil
	default:
		c.WithField("driver", driver).Error("unknown storage driver")
		return nil, domain.ErrBadParamInput
	}
}

func init() {
	viper.SetDefault("storage.driver", driverMemory)
	viper.SetDefault("auction.cacheTTL", 5*time.Second)
	viper.SetDefault("events.journal", true)
	viper.SetDefault("payment.gasStipend", 2300)
}
