// Package deadcode builds a whole-program index of Ruby definitions and
// references and reports definitions whose names are never referenced.
//
// Indexing is done per file by a FileIndexer walking a tree-sitter tree. Every
// declaration becomes a Definition and every call site or constant use becomes
// a Reference; both are inserted into a shared Index as soon as they are
// created. An ordered Chain of plugins observes each emission and may mark a
// Definition as ignored or register synthetic References for names that only
// appear through metaprogramming (send, callbacks, DSL macros).
//
// After every file is indexed the Index is sealed and Resolve computes the
// verdict: a Definition is dead when it is not ignored and no Reference with
// the same bare name exists anywhere. Matching deliberately ignores
// namespaces, so a call to foo keeps every method named foo alive.
package deadcode
