package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// how to interpret results, and what it returns.

func describeFindDeadCode() string {
	return `Finds Ruby classes, modules, methods, accessors and constants whose name is never referenced anywhere in the analyzed files.

USE WHEN:
- Cleaning up a Ruby or Rails codebase before a refactor
- Checking whether a method can be deleted safely
- Finding code orphaned by a removed feature
- Reviewing a pull request that removes callers

INTERPRETING RESULTS:
- Matching is by bare name: any call to "name" keeps every definition called "name" alive
- A reported definition has no reference by name in any analyzed file, so widen "paths" before deleting
- Dynamic dispatch through computed strings (send("foo_#{x}")) is invisible; check before removing
- Plugins (ruby, rails, minitest, rspec, rake, thor, sorbet) mark framework entry points as used
- Files that failed to parse are listed under errors and contribute nothing

METRICS RETURNED:
- dead: kind, name, full_name, file, line, end_line, visibility
- errors: files skipped with the reason
- summary: definitions, references, live, dead, ignored, dead_percentage, by_kind, plugins`
}

func describeListPlugins() string {
	return `Lists the built-in plugins that recognise framework entry points.

USE WHEN:
- Choosing the "plugins" argument of find_dead_code
- Explaining why a definition was not reported

INTERPRETING RESULTS:
- Plugins run in the listed order when no selection is given
- A plugin only ignores definitions or adds references; it never hides errors

METRICS RETURNED:
- name and description of each plugin`
}

func describeSorbetMetrics() string {
	return `Summarises a Sorbet metrics file written by "srb tc --metrics-file".

USE WHEN:
- Measuring how much of a codebase is type-checked
- Tracking sigil strictness adoption over time

INTERPRETING RESULTS:
- sigils counts files per strictness: ignore, false, true, strict, strong
- methods_with_sig vs methods_without_sig gives signature coverage
- calls_typed vs calls_untyped gives call-site coverage

METRICS RETURNED:
- files, modules, classes, singleton_classes
- methods_with_sig, methods_without_sig, calls_typed, calls_untyped
- sigils histogram`
}
