package mongoclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/auction"
)

func TestMakeBsonM(t *testing.T) {
	opts, err := domain.GetEventFindAllOptions(
		domain.EventWithEmitter("0xAE00000000000000000000000000000000000001"),
		domain.EventWithPagination(10, 20),
	)
	assert.NoError(t, err)

	qry, err := MakeBsonM(opts)
	assert.NoError(t, err)
	assert.Equal(
		t,
		bson.M{
			// nil name is omitted, paging is not a filter
			"emitter": domain.Address("0xae00000000000000000000000000000000000001"),
		},
		qry,
	)
}

func TestMakeBsonMAuctionFilter(t *testing.T) {
	opts, err := auction.GetFindAllOptions(
		auction.WithSeller("0xA11CE00000000000000000000000000000000001"),
		auction.WithLastBidder("0xB0B0000000000000000000000000000000000002"),
		auction.WithPagination(0, 5),
	)
	assert.NoError(t, err)

	qry, err := MakeBsonM(&opts)
	assert.NoError(t, err)
	assert.Equal(t, bson.M{
		"seller":     domain.Address("0xa11ce00000000000000000000000000000000001"),
		"lastBidder": domain.Address("0xb0b0000000000000000000000000000000000002"),
	}, qry)
}

func TestMakeBsonMKeepsSetFields(t *testing.T) {
	type filter struct {
		Seller  domain.Address `bson:"seller"`
		Bidder  string         `bson:"bidder,omitempty"`
		Skipped int            `bson:"-"`
		hidden  string
	}

	qry, err := MakeBsonM(&filter{Seller: "0xAB", Skipped: 3, hidden: "x"})
	assert.NoError(t, err)
	assert.Equal(t, bson.M{"seller": domain.Address("0xab")}, qry)
}

func TestMakeBsonMRejectsNonStruct(t *testing.T) {
	_, err := MakeBsonM(map[string]string{"seller": "0x01"})
	assert.ErrorIs(t, err, ErrNotStruct)

	_, err = MakeBsonM(nil)
	assert.ErrorIs(t, err, ErrNotStruct)
}
