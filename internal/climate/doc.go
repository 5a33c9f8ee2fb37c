// Package climate models one physical air conditioner driven over IR.
//
// A Controller keeps the last requested state of its unit, encodes every new
// request into a frame, serializes it and hands the program to a transmit
// sink. Units cannot report their state back, so the controller's view is
// only as good as the commands it has sent.
package climate
