/*
Package ports defines the driven ports (interfaces) between the run condition
evaluator and its host.

These interfaces decouple the evaluator from the host's build records and from
where condition configuration is persisted.

# Key Interfaces

  - CauseSource: Supplies the ordered cause list of one build invocation (the host build context adapter).
  - BuildStore: A CauseSource that also records builds and appended causes (e.g., Memory or Redis).
  - ConditionLoader: Loads persisted condition configuration (e.g., from Loam or Memory).
*/
package ports
