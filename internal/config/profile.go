// Copyright 2024 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package config

import (
	"slices"

	"github.com/blinklabs-io/fpowd/pow"
)

type Profile struct {
	Network        string               // Network name
	LargePrimeTest pow.LargePrimePolicy // Oracle policy for factors above 16 bits
	MaxBitLength   uint32               // Largest accepted target bit length
	Consensus      bool                 // Verifier settings are fixed by consensus
}

// GetProfile returns the selected profile
func GetProfile() Profile {
	return Profiles[globalConfig.Profile]
}

func GetAvailableProfiles() []string {
	ret := make([]string, 0, len(Profiles))
	for k := range Profiles {
		ret = append(ret, k)
	}
	slices.Sort(ret)
	return ret
}

var Profiles = map[string]Profile{
	// The deployed network rejects every factor above 65535
	"mainnet": {
		Network:        "mainnet",
		LargePrimeTest: pow.LargePrimeReject,
		MaxBitLength:   pow.MaxBitLength,
		Consensus:      true,
	},
	"testnet": {
		Network:        "testnet",
		LargePrimeTest: pow.LargePrimeReject,
		MaxBitLength:   pow.MaxBitLength,
		Consensus:      true,
	},
	// Local experimentation, any policy may be selected
	"regtest": {
		Network:        "regtest",
		LargePrimeTest: pow.LargePrimeDeterministic,
		MaxBitLength:   64,
	},
}
