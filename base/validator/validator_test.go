package validator

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ValidatorTestSuite struct {
	suite.Suite
}

func (s *ValidatorTestSuite) SetupTest() {
}

func (s *ValidatorTestSuite) TearDownTest() {
}

func (s *ValidatorTestSuite) SetupSuite() {
}

func (s *ValidatorTestSuite) TearDownSuite() {
}

func (s *ValidatorTestSuite) TestIsValidAddress() {
	tests := []struct {
		desc       string
		address    string
		expIsValid bool
	}{
		{
			desc:       "invalid address",
			address:    "0x000",
			expIsValid: false,
		},
		{
			desc:       "valid address - real address",
			address:    "0x939ae6A4C8dfDBB1f7085189574F0A938013952A",
			expIsValid: true,
		},
		{
			desc:       "valid address - lower case",
			address:    "0x939ae6a4c8dfdbb1f7085189574f0a938013952b",
			expIsValid: true,
		},
	}
	for _, t := range tests {
		s.Equal(t.expIsValid, IsValidAddress(t.address), t.desc)
	}
}

func (s *ValidatorTestSuite) TestIsValidAmount() {
	tests := []struct {
		desc       string
		amount     string
		expIsValid bool
	}{
		{desc: "zero", amount: "0", expIsValid: true},
		{desc: "large", amount: "1000000000000000000000", expIsValid: true},
		{desc: "negative", amount: "-1", expIsValid: false},
		{desc: "fraction", amount: "1.5", expIsValid: false},
		{desc: "empty", amount: "", expIsValid: false},
	}
	for _, t := range tests {
		s.Equal(t.expIsValid, IsValidAmount(t.amount), t.desc)
	}
}

func (s *ValidatorTestSuite) TestTags() {
	type params struct {
		To     string `validate:"required,address"`
		Amount string `validate:"required,amount"`
	}
	v := NewCustomValidator(New())
	s.NoError(v.Validate(&params{To: "0x939ae6a4c8dfdbb1f7085189574f0a938013952b", Amount: "10"}))
	s.Error(v.Validate(&params{To: "0x000", Amount: "10"}))
	s.Error(v.Validate(&params{To: "0x939ae6a4c8dfdbb1f7085189574f0a938013952b", Amount: "ten"}))
}

func TestValidatorTestSuite(t *testing.T) {
	suite.Run(t, new(ValidatorTestSuite))
}
