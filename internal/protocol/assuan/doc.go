// Package assuan implements the small slice of the Assuan protocol needed to
// tell whether a gpg-agent compatible server is accepting requests.
//
// # Overview
//
// Assuan is the line-based IPC protocol spoken on gpg-agent sockets. A
// server greets each connection with an "OK" line, then answers every
// request with status ("S ..."), comment ("# ..."), data ("D ...") lines and
// a final "OK" or "ERR <code> <description>".
//
// # Probe
//
//  1. Dial the unix socket.
//  2. Read the greeting and require "OK".
//  3. Send RESET and require "OK".
//  4. Send BYE and close.
//
// A server that accepts connections but has not finished initialising will
// usually fail step 2 or 3, which is why the probe goes beyond connect().
// RESET is used for the round trip because hardware-backed agents answer
// only a fixed command set, and every gpg-agent compatible server accepts
// RESET.
package assuan
