package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hunterproxy/internal/model"
)

func TestDedupePreservesFirstSeenOrder(t *testing.T) {
	in := []string{"a", "b", "a", "c", "b"}
	assert.Equal(t, []string{"a", "b", "c"}, dedupe(in))
}

func TestTierSplitRespectsCapsAndDropsDeadTier(t *testing.T) {
	var results []model.BenchResult
	for i := 0; i < goldCap+5; i++ {
		results = append(results, model.BenchResult{LatencyMs: 50, Tier: model.TierGold})
	}
	results = append(results, model.BenchResult{LatencyMs: 2500, Tier: model.TierDead})

	gold, silver := tierSplit(results)
	assert.Len(t, gold, goldCap)
	assert.Empty(t, silver)
}

func TestTierSplitKeepsSilverUnderCap(t *testing.T) {
	results := []model.BenchResult{
		{LatencyMs: 300, Tier: model.TierSilver},
		{LatencyMs: 50, Tier: model.TierGold},
	}
	gold, silver := tierSplit(results)
	assert.Len(t, gold, 1)
	assert.Len(t, silver, 1)
}

func TestURIsOfExtractsURIField(t *testing.T) {
	results := []model.BenchResult{
		{ParsedConfig: model.ParsedConfig{URI: "trojan://a@h:1"}},
		{ParsedConfig: model.ParsedConfig{URI: "trojan://b@h:1"}},
	}
	assert.Equal(t, []string{"trojan://a@h:1", "trojan://b@h:1"}, urisOf(results))
}

func TestSeedEntriesOfAssignsStableContentAddressedID(t *testing.T) {
	results := []model.BenchResult{
		{ParsedConfig: model.ParsedConfig{URI: "trojan://a@h:1"}, LatencyMs: 10},
	}
	first := seedEntriesOf(results)
	second := seedEntriesOf(results)
	assert.Equal(t, first[0].ID, second[0].ID, "the same URI must always hash to the same seed ID")
	assert.NotEmpty(t, first[0].ID)
}

func TestSplitByPredicatePartitionsMatchedAndRest(t *testing.T) {
	results := []model.BenchResult{
		{ParsedConfig: model.ParsedConfig{PS: "gemini-node"}},
		{ParsedConfig: model.ParsedConfig{PS: "plain-node"}},
	}
	matched, rest := splitByPredicate(results, defaultGeminiPredicate)
	assert.Len(t, matched, 1)
	assert.Len(t, rest, 1)
	assert.Equal(t, "gemini-node", matched[0].PS)
}

func TestDefaultSubBalancersOffsetsPortFromBase(t *testing.T) {
	subs := DefaultSubBalancers(10808)
	assert := assert.New(t)
	assert.Len(subs, 1)
	assert.Equal(10809, subs[0].Port)
	assert.True(subs[0].Predicate("gmn-node"))
	assert.False(subs[0].Predicate("other-node"))
}

func TestPortPoolCheckoutCheckinRoundTrips(t *testing.T) {
	pool := newPortPool(20000, 3)
	var ports []int
	for i := 0; i < 3; i++ {
		ports = append(ports, pool.checkout())
	}
	assert.ElementsMatch(t, []int{20000, 20001, 20002}, ports)

	for _, p := range ports {
		pool.checkin(p)
	}
	// pool is exhausted/refilled; checking out 3 again must not block
	done := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			pool.checkout()
		}
		close(done)
	}()
	<-done
}
