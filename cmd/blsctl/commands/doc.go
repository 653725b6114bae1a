// Package commands implements the blsctl command tree. Every subcommand is a
// thin shell over one boundary operation of internal/host; inputs and
// outputs are hex encoded.
package commands
