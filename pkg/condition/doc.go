/*
Package condition decides whether a conditional build action should run, based on the
causes recorded against the build.

A Matcher recognises one cause kind (user or upstream) and tests a Filter against it.
Evaluate applies a matcher to a build's full cause list:

  - Non-exclusive: true if at least one cause is of the matcher's kind and matches the filter.
    Unrelated or non-matching causes are ignored.
  - Exclusive: true only if the build has exactly one cause, and that cause matches.
    Any second cause, matching or not, makes the result false.

Causes of kinds no matcher knows about are never relevant, but they count toward the
cardinality of an exclusive check.

Evaluation is a pure function. A compiled Condition holds no mutable state and can be
shared by concurrent evaluations.
*/
package condition
