// Package tqq preprocesses tqq documents into plain TQN text. See
// Engine for the entry point.
package tqq
