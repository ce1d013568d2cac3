// Package zcml interprets ZCML, the XML configuration language used to wire
// components together at startup.
//
// A Context accumulates the effects of a load: declared features, the set of
// files already processed, and the deferred actions emitted by directives.
// Directives are looked up by namespace and element name in the context's
// directive table; RegisterCommonDirectives installs the built-in vocabulary
// (configure, include, includeOverrides, exclude and meta:provides).
//
// Processing happens in two phases. Parsing walks the document, evaluates
// zcml:condition attributes and calls directive handlers. Handlers either
// act immediately (meta:provides declares a feature so that later conditions
// see it) or emit actions. ExecuteActions then resolves conflicting actions
// and runs the survivors in order. A load with execute=false stops after the
// first phase and leaves the actions pending on the context.
package zcml
