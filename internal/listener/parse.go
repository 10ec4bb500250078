package listener

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ParseContract validates and converts the bridge contract address.
func ParseContract(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return common.Address{}, fmt.Errorf("contract address is required")
	}
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid contract address: %s", input)
	}
	return common.HexToAddress(input), nil
}
