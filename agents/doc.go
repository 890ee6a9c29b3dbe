// Package agents contains the built-in agent plugins served by the gateway
// and the model-backed agent implementation they share. Each plugin exposes a
// registration function returning a registry.Plugin; the host process links
// the plugins it wants to serve and loads them during startup.
package agents
