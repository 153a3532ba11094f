// Mastic VDAF demo CLI
//
// Usage:
//   mastic demo [bits]              Shard/prepare/aggregate a batch of synthetic reports
//   mastic shard <bits> <alpha>     Shard a single Count report and print the shares
//   mastic benchmark                Run timing benchmarks for shard/prepare
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/luxfi/mastic/field"
	"github.com/luxfi/mastic/flp"
	"github.com/luxfi/mastic/mastic"
	"github.com/luxfi/mastic/vidpf"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "demo":
		cmdDemo()
	case "shard":
		cmdShard()
	case "benchmark":
		cmdBenchmark()
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Mastic VDAF - Verifiable Distributed Aggregation for Heavy Hitters

Usage:
  mastic <command> [arguments]

Commands:
  demo [bits]          Shard, prepare, and aggregate a batch of Count reports
  shard <bits> <alpha>  Shard one Count report and print the resulting shares
  benchmark             Run timing benchmarks for shard/prepare
  help                  Show this help

Examples:
  mastic demo 8
  mastic shard 8 10101011
  mastic benchmark

For production use, see the Go library at github.com/luxfi/mastic`)
}

func randomAlpha(bits int) vidpf.Bits {
	out := make(vidpf.Bits, bits)
	var buf [1]byte
	for i := range out {
		rand.Read(buf[:])
		out[i] = buf[0]&1 == 1
	}
	return out
}

func randBytes(n int) []byte {
	b := make([]byte, n)
	rand.Read(b)
	return b
}

func cmdDemo() {
	bits := 8
	if len(os.Args) > 2 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			bits = n
		}
	}

	fmt.Printf("Demo: Count heavy-hitters over a %d-bit domain\n\n", bits)

	m := mastic.New(flp.NewCount(), bits)
	ctx := []byte("mastic-cli-demo")
	verifyKey := randBytes(mastic.VerifyKeySize)

	numReports := 20
	fmt.Printf("1. Sharding %d reports...\n", numReports)
	start := time.Now()

	alphas := make([]vidpf.Bits, numReports)
	heavy := randomAlpha(bits)
	for i := range alphas {
		if i%3 == 0 {
			alphas[i] = heavy
		} else {
			alphas[i] = randomAlpha(bits)
		}
	}

	type report struct {
		pub    mastic.PublicShare
		shares [2]mastic.InputShare
		nonce  []byte
	}
	reports := make([]report, numReports)
	for i, alpha := range alphas {
		nonce := randBytes(mastic.NonceSize)
		pub, shares, err := m.Shard(ctx, mastic.Measurement{Alpha: alpha, Weight: flp.Measurement{1}}, nonce, randBytes(m.RandSize()))
		if err != nil {
			fmt.Printf("Error sharding report %d: %v\n", i, err)
			os.Exit(1)
		}
		reports[i] = report{pub: pub, shares: shares, nonce: nonce}
	}
	fmt.Printf("   Done in %v\n\n", time.Since(start))

	fmt.Println("2. Preparing at level 0 (top bit), weight check enabled...")
	agg := mastic.AggregationParam{
		Level:         0,
		Prefixes:      []vidpf.Bits{{false}, {true}},
		DoWeightCheck: true,
	}

	leaderAgg := m.AggInit(agg)
	helperAgg := m.AggInit(agg)
	rejected := 0
	for _, r := range reports {
		stateL, shareL, err := m.PrepInit(verifyKey, ctx, mastic.Leader, agg, r.nonce, r.pub, r.shares[mastic.Leader])
		if err != nil {
			fmt.Printf("Error PrepInit(leader): %v\n", err)
			os.Exit(1)
		}
		stateH, shareH, err := m.PrepInit(verifyKey, ctx, mastic.Helper, agg, r.nonce, r.pub, r.shares[mastic.Helper])
		if err != nil {
			fmt.Printf("Error PrepInit(helper): %v\n", err)
			os.Exit(1)
		}

		msg, err := m.PrepSharesToPrep(ctx, agg, []mastic.PrepShare{shareL, shareH})
		if err != nil {
			rejected++
			continue
		}

		outL, err := m.PrepNext(stateL, msg)
		if err != nil {
			rejected++
			continue
		}
		outH, err := m.PrepNext(stateH, msg)
		if err != nil {
			rejected++
			continue
		}
		leaderAgg = m.AggUpdate(leaderAgg, outL)
		helperAgg = m.AggUpdate(helperAgg, outH)
	}
	fmt.Printf("   %d/%d reports accepted\n\n", numReports-rejected, numReports)

	fmt.Println("3. Unsharding...")
	results, err := m.Unshard(agg, []field.Vector{leaderAgg, helperAgg}, uint64(numReports))
	if err != nil {
		fmt.Printf("Error unsharding: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("   prefix 0: count=%d\n", results[0][0])
	fmt.Printf("   prefix 1: count=%d\n", results[1][0])
}

func cmdShard() {
	if len(os.Args) < 4 {
		fmt.Println("usage: mastic shard <bits> <alpha bitstring>")
		os.Exit(1)
	}
	bits, err := strconv.Atoi(os.Args[2])
	if err != nil || bits < 1 {
		fmt.Println("invalid bits")
		os.Exit(1)
	}
	alphaStr := os.Args[3]
	if len(alphaStr) != bits {
		fmt.Printf("alpha must be exactly %d bits\n", bits)
		os.Exit(1)
	}
	alpha := make(vidpf.Bits, bits)
	for i, c := range alphaStr {
		alpha[i] = c == '1'
	}

	m := mastic.New(flp.NewCount(), bits)
	ctx := []byte("mastic-cli-shard")
	nonce := randBytes(mastic.NonceSize)

	pub, shares, err := m.Shard(ctx, mastic.Measurement{Alpha: alpha, Weight: flp.Measurement{1}}, nonce, randBytes(m.RandSize()))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sharded alpha=%s (%d bits)\n\n", alphaStr, bits)
	fmt.Printf("Leader key:  0x%s\n", hex.EncodeToString(shares[mastic.Leader].Key))
	fmt.Printf("Helper key:  0x%s\n", hex.EncodeToString(shares[mastic.Helper].Key))
	fmt.Printf("Correction words: %d\n", len(pub.CorrectionWords))
}

func cmdBenchmark() {
	fmt.Println("Mastic VDAF Benchmarks")
	fmt.Println("======================")
	fmt.Println()

	bits := 16
	m := mastic.New(flp.NewCount(), bits)
	ctx := []byte("mastic-cli-benchmark")
	verifyKey := randBytes(mastic.VerifyKeySize)
	iterations := 50

	start := time.Now()
	type shardResult struct {
		pub    mastic.PublicShare
		shares [2]mastic.InputShare
		nonce  []byte
	}
	results := make([]shardResult, iterations)
	for i := 0; i < iterations; i++ {
		nonce := randBytes(mastic.NonceSize)
		pub, shares, err := m.Shard(ctx, mastic.Measurement{Alpha: randomAlpha(bits), Weight: flp.Measurement{1}}, nonce, randBytes(m.RandSize()))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		results[i] = shardResult{pub: pub, shares: shares, nonce: nonce}
	}
	shardTime := time.Since(start) / time.Duration(iterations)
	fmt.Printf("Shard:    %v per report\n", shardTime)

	agg := mastic.AggregationParam{Level: uint16(bits - 1), Prefixes: []vidpf.Bits{randomAlpha(bits)}, DoWeightCheck: true}

	start = time.Now()
	for i := 0; i < iterations; i++ {
		_, _, err := m.PrepInit(verifyKey, ctx, mastic.Leader, agg, results[i].nonce, results[i].pub, results[i].shares[mastic.Leader])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}
	prepTime := time.Since(start) / time.Duration(iterations)
	fmt.Printf("PrepInit: %v per report (single aggregator)\n", prepTime)
}
