package mongoclient

import (
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"

	"github.com/x-xyz/auctionhouse/domain"
)

var (
	ErrNotStruct = fmt.Errorf("filter is not a struct")
)

// MakeBsonM turns a find-options struct into an equality filter. Unset fields and `bson:"-"` ones are left out.
// Addresses are stored lower-cased, so they are matched that way.
func MakeBsonM(filter interface{}) (bson.M, error) {
	val := reflect.Indirect(reflect.ValueOf(filter))
	if val.Kind() != reflect.Struct {
		return nil, ErrNotStruct
	}

	res := bson.M{}
	for i := 0; i < val.NumField(); i++ {
		sf := val.Type().Field(i)
		if sf.PkgPath != "" {
			continue
		}
		tag, err := bsoncodec.DefaultStructTagParser(sf)
		if err != nil {
			return nil, err
		}
		if tag.Skip {
			continue
		}

		field := val.Field(i)
		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				continue
			}
			field = field.Elem()
		} else if field.IsZero() {
			continue
		}

		if addr, ok := field.Interface().(domain.Address); ok {
			res[tag.Name] = addr.ToLower()
			continue
		}
		res[tag.Name] = field.Interface()
	}
	return res, nil
}
