package address

import (
	"testing"

	"wallet_engine/internal/domain/entity"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
)

func TestValidateAddress(t *testing.T) {
	evm := entity.NetworkDescriptor{ID: "ethereum", AddressFormat: entity.AddressFormatEVM}
	tron := entity.NetworkDescriptor{ID: "tron", AddressFormat: entity.AddressFormatTron}
	btc := entity.NetworkDescriptor{ID: "segwit", AddressFormat: entity.AddressFormatBitcoin}
	ton := entity.NetworkDescriptor{ID: "ton", AddressFormat: entity.AddressFormatAny}

	tests := []struct {
		name    string
		network entity.NetworkDescriptor
		addr    string
		wantErr bool
	}{
		{"evm checksummed", evm, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", false},
		{"evm lower case", evm, "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", false},
		{"evm bad checksum", evm, "0xc02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", true},
		{"evm no prefix", evm, "c02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", true},
		{"evm too short", evm, "0x1234", true},
		{"tron valid", tron, "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", false},
		{"tron wrong prefix", tron, "XR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", true},
		{"tron wrong length", tron, "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6", true},
		{"tron evm address", tron, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", true},
		{"btc legacy", btc, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", false},
		{"btc bech32", btc, "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", false},
		{"btc garbage", btc, "bc1-not-an-address", true},
		{"btc evm address", btc, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", true},
		{"any format", ton, "UQBvW8Z5huBkMJYdnfAEM5JqTNkuWX3diqYENkWsIL0XggGG", false},
		{"empty", ton, "  ", true},
		{"unknown format", entity.NetworkDescriptor{ID: "x", AddressFormat: "cosmos"}, "cosmos1abc", true},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateAddress(tt.network, tt.addr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBitcoinOtherNet(t *testing.T) {
	btc := entity.NetworkDescriptor{ID: "segwit", AddressFormat: entity.AddressFormatBitcoin}

	testnet := NewValidatorWithParams(&chaincfg.TestNet3Params)
	assert.Error(t, testnet.ValidateAddress(btc, "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"))
	assert.Error(t, NewValidator().ValidateAddress(btc, "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"))
}
