/*
Package dsl provides a fluent Go builder for HTN task trees.

It lets developers define task trees in code with compile-time checked
comparators and operations instead of relying on YAML documents. Literal
targets and operands are converted with domain.FromAny; domain.Expression
values (Ref, Calc, Produce) are used as given.

Example usage:

	farm := dsl.Primitive("Farm").
		Require("Energy", domain.GreaterOrEqual, 30).
		Effect("CropHealth", domain.IncreaseBy, 20).
		Effect("Energy", domain.DecreaseBy, 30)

	sleep := dsl.Primitive("Sleep").
		Effect("Energy", domain.IncreaseBy, 5)

	root, err := dsl.Selector("Farmer",
		dsl.Sequence("Work", farm, sleep),
	).Build()
*/
package dsl
