// Package runtime implements the transition pipeline behind the public stepwise API.
package runtime
