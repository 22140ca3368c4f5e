/*
Package domain contains the data model of the HTN planner.

It defines the values held in agent state, the conditions and effects that
read and write them, and the closed task variant set the planner resolves.
This package is kept pure and free of I/O so task trees can be shared
between agents, adapters and tools.

# Key Entities

  - Value: a closed scalar union (bool, int, float, text, duration, id, nil).
  - Expression: Constant, StateRef, StateOperation or ProducerFunc.
  - Condition: state key, Comparison and target expression, optionally best-effort.
  - Effect: state key, Operation and operand expression.
  - Task: Primitive (effects), Selector (first feasible child) or Sequence (all children in order).
  - Sensor: a producer refreshing one state key before planning and between execution steps.
*/
package domain
