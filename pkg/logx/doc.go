// Package logx is a thin structured-logging facade over zerolog.
//
// It exists so application code depends on a small, stable API (Logger,
// Field helpers) while sink wiring (console, file) stays swappable at
// runtime via Service.Apply.
package logx
