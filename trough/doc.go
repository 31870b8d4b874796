// Package trough defines the capability interface of the MicroTrough instrument
// driver and provides a software simulator of it.
//
// The server core never talks to hardware directly. Everything it needs from
// the instrument goes through the Provider interface: named capability calls
// with positional string arguments, plus property get/set access. Outcomes
// cross the boundary either as an ordered list of pre-formatted string tokens
// or as a *CallError descriptor carrying the driver's numeric code, message
// and fully-qualified origin name.
//
// The package also carries the vendor tables a client needs to interpret
// results: GetData field indices, device status codes, stepping direction
// codes, driver error codes and measurement modes.
package trough
