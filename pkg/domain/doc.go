/*
Package domain contains the core data model of the run condition evaluator.

It defines the facts a build orchestration host records about a build and the
configuration of a cause condition. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Cause: An immutable record of one reason a build started (User, Upstream, Timer, Remote, Legacy, Other).
  - Build: A host build invocation with its ordered cause list. Matrix runs carry their parent's causes.
  - Condition: The persisted configuration of a cause condition (matcher kind, filter, exclusive flag).
  - Hooks: Callbacks the host registers to observe decisions.
*/
package domain
