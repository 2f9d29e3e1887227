package catalog

import "github.com/TFMV/encore/pkg/models"

// Strategy names used by plan and join-strategy comparisons.
const (
	StrategyRegular    = "Regular"
	StrategyForceIndex = "Force Index"
	StrategyNestedLoop = "Nested Loop"
	StrategyHashJoin   = "Hash Join"
	StrategyMergeJoin  = "Merge Join"
)

// JoinStrategies returns the strategies raced by the join comparison sweep in
// presentation order. The baseline comes first so reports can compute
// improvement against it. Each call returns fresh values safe to modify.
func JoinStrategies() []models.StrategySpec {
	return []models.StrategySpec{
		{Name: StrategyRegular},
		{Name: StrategyForceIndex, Variant: VariantWithIndex},
		{
			Name:    StrategyNestedLoop,
			Variant: VariantNestedLoop,
			Profile: &models.OptimizerProfile{
				Name: StrategyNestedLoop,
				Settings: map[string]string{
					"optimizer_switch": "block_nested_loop=on,batched_key_access=off,mrr_cost_based=off",
				},
			},
		},
		{
			Name:    StrategyHashJoin,
			Variant: VariantHash,
			Profile: &models.OptimizerProfile{
				Name: StrategyHashJoin,
				Settings: map[string]string{
					"optimizer_switch": "batched_key_access=on,block_nested_loop=off,mrr_cost_based=on",
				},
			},
		},
		{
			Name:    StrategyMergeJoin,
			Variant: VariantMerge,
			Profile: &models.OptimizerProfile{
				Name: StrategyMergeJoin,
				Settings: map[string]string{
					"optimizer_switch": "mrr=on,mrr_cost_based=on,batched_key_access=off",
				},
			},
		},
	}
}

// PlanStrategies returns the two strategies of the plan comparison: the
// baseline statement and its force-index rewrite.
func PlanStrategies() []models.StrategySpec {
	return []models.StrategySpec{
		{Name: StrategyRegular},
		{Name: StrategyForceIndex, Variant: VariantWithIndex},
	}
}
