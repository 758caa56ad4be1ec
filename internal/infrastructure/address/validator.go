// Package address validates recipient addresses per network address format.
package address

import (
	"errors"
	"fmt"
	"strings"

	"wallet_engine/internal/app/port"
	"wallet_engine/internal/domain/entity"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	tronaddress "github.com/fbsobreira/gotron-sdk/pkg/address"
)

var ErrUnsupportedFormat = errors.New("unsupported address format")

// validator implements port.AddressValidator.
type validator struct {
	btcParams *chaincfg.Params
}

// NewValidator returns a validator checking bitcoin addresses against mainnet.
func NewValidator() port.AddressValidator {
	return &validator{btcParams: &chaincfg.MainNetParams}
}

// NewValidatorWithParams is NewValidator for another bitcoin network, e.g. testnet.
func NewValidatorWithParams(params *chaincfg.Params) port.AddressValidator {
	if params == nil {
		params = &chaincfg.MainNetParams
	}
	return &validator{btcParams: params}
}

func (v *validator) ValidateAddress(network entity.NetworkDescriptor, addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return errors.New("address is empty")
	}
	switch network.AddressFormat {
	case entity.AddressFormatEVM:
		return ValidateEVM(addr)
	case entity.AddressFormatTron:
		return ValidateTron(addr)
	case entity.AddressFormatBitcoin:
		return ValidateBitcoin(addr, v.btcParams)
	case entity.AddressFormatAny, "":
		// формат проверяет wallet core при отправке
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, network.AddressFormat)
	}
}

// ValidateEVM accepts 0x-prefixed hex addresses. Mixed-case addresses must
// carry a valid EIP-55 checksum.
func ValidateEVM(addr string) error {
	if !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
		return errors.New("invalid EVM address: missing 0x prefix")
	}
	if !common.IsHexAddress(addr) {
		return errors.New("invalid EVM address format")
	}
	body := addr[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return nil
	}
	if common.HexToAddress(addr).Hex() != addr {
		return errors.New("invalid EVM address checksum")
	}
	return nil
}

// ValidateTron accepts base58check addresses of 34 characters starting with T.
func ValidateTron(addr string) error {
	if !strings.HasPrefix(addr, "T") {
		return errors.New("invalid TRON address: must start with 'T'")
	}
	if len(addr) != 34 {
		return errors.New("invalid TRON address: must be 34 characters")
	}
	if _, err := tronaddress.Base58ToAddress(addr); err != nil {
		return fmt.Errorf("invalid TRON address: %w", err)
	}
	return nil
}

// ValidateBitcoin accepts any address type valid for the given network.
func ValidateBitcoin(addr string, params *chaincfg.Params) error {
	decoded, err := btcutil.DecodeAddress(addr, params)
	if err != nil {
		return fmt.Errorf("invalid Bitcoin address: %w", err)
	}
	if !decoded.IsForNet(params) {
		return fmt.Errorf("invalid Bitcoin address: not a %s address", params.Name)
	}
	return nil
}
