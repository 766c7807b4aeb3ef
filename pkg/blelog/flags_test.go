package blelog_test

import (
	"testing"

	"github.com/srg/bletap/pkg/blelog"
	"github.com/stretchr/testify/suite"
)

type FlagsTestSuite struct {
	suite.Suite
}

func (suite *FlagsTestSuite) TestDefaults() {
	suite.Equal(blelog.AdapterStatus|blelog.DeviceStatus, blelog.DefaultFlags, "defaults MUST be adapter and device status")
	suite.Len(blelog.AllFlags.Split(), 12, "AllFlags MUST cover every category")
	suite.Len(blelog.FlagNames(), 12, "every category MUST have a name")
}

func (suite *FlagsTestSuite) TestHasAndSplit() {
	f := blelog.AdapterScanStatus | blelog.CharacteristicRead

	suite.True(f.Has(blelog.CharacteristicRead))
	suite.False(f.Has(blelog.CharacteristicWrite))
	suite.False(f.Has(blelog.CharacteristicRead|blelog.CharacteristicWrite), "Has MUST require every bit")
	suite.Equal([]blelog.Flags{blelog.AdapterScanStatus, blelog.CharacteristicRead}, f.Split())
	suite.Empty(blelog.Flags(0).Split())
}

func (suite *FlagsTestSuite) TestString() {
	suite.Equal("None", blelog.Flags(0).String())
	suite.Equal("AdapterStatus|DeviceStatus", blelog.DefaultFlags.String())
	suite.Equal("DescriptorWrite|0x1000", (blelog.DescriptorWrite | blelog.Flags(1<<12)).String(), "unknown bits MUST render in hex")
}

func (suite *FlagsTestSuite) TestParseFlags() {
	// GOAL: Verify flag parsing accepts the documented spellings and rejects unknown names
	//
	// TEST SCENARIO: Parse a table of inputs → expected bit-set or ErrUnknownFlag

	tests := []struct {
		name     string
		input    string
		expected blelog.Flags
		wantErr  bool
	}{
		{name: "empty", input: "", expected: 0},
		{name: "camel case", input: "DeviceStatus", expected: blelog.DeviceStatus},
		{name: "kebab case", input: "characteristic-notify", expected: blelog.CharacteristicNotify},
		{name: "snake case upper", input: "DESCRIPTOR_READ", expected: blelog.DescriptorRead},
		{name: "comma list", input: "adapter-status, adapter-scan-status", expected: blelog.AdapterStatus | blelog.AdapterScanStatus},
		{name: "pipe list", input: "AdapterStatus|AdapterScanStatus", expected: blelog.AdapterStatus | blelog.AdapterScanStatus},
		{name: "default keyword", input: "default,service-discovered", expected: blelog.DefaultFlags | blelog.ServiceDiscovered},
		{name: "all keyword", input: "all", expected: blelog.AllFlags},
		{name: "none keyword", input: "none", expected: 0},
		{name: "hex bit", input: "DescriptorWrite|0x1000", expected: blelog.DescriptorWrite | blelog.Flags(1<<12)},
		{name: "hex known bit", input: "0x8", expected: blelog.DeviceStatus},
		{name: "unknown", input: "device-status,bogus", wantErr: true},
		{name: "bad hex", input: "0xzz", wantErr: true},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			got, err := blelog.ParseFlags(tt.input)
			if tt.wantErr {
				suite.ErrorIs(err, blelog.ErrUnknownFlag, "unknown names MUST wrap ErrUnknownFlag")
				return
			}
			suite.Require().NoError(err)
			suite.Equal(tt.expected, got)
		})
	}
}

func (suite *FlagsTestSuite) TestStringParsesBack() {
	for _, f := range []blelog.Flags{blelog.DefaultFlags, blelog.AllFlags, blelog.CharacteristicRead | blelog.DescriptorWrite, blelog.AdapterStatus | blelog.Flags(1<<31)} {
		parsed, err := blelog.ParseFlags(f.String())
		suite.Require().NoError(err)
		suite.Equal(f, parsed, "String output MUST parse back to the same set")
	}
}

func TestFlagsTestSuite(t *testing.T) {
	suite.Run(t, new(FlagsTestSuite))
}
