// Package config provides the configuration of a jaspi-harness run.
//
// Configuration is an explicit value: GetDefaultConfig supplies the defaults,
// LoadConfig layers a YAML file on top, and ApplyEnvironment applies the
// HTTP_PORT, HOSTNAME and CONTEXT_URI overrides. The resulting HarnessConfig is
// passed by value to the lifecycle controller and the REST client; there is no
// package-level state.
//
// # File format
//
//	deployment:
//	  archivePath: dist/apache-tomcat-6.0.37.zip
//	  webAppPath: dist/jaspi-test-server.war
//	  deployDir: target/deploy
//	  debug: '{{ env "JASPI_DEBUG" | default "false" }}'
//	server:
//	  port: 8080
//	  appContext: jaspi
//	readiness:
//	  interval: 500ms
//	  timeout: 2m
//
// The file is rendered with text/template and the sprig function set before it
// is decoded. Relative paths are resolved against deployment.resourceDir, which
// defaults to the directory holding the file.
package config
