// Package mocks holds gomock mocks of the player's collaborators.
package mocks

//go:generate mockgen -destination=decoder.go -package=mocks github.com/bodgit/gifloop/decoder Decoder
//go:generate mockgen -destination=display.go -package=mocks github.com/bodgit/gifloop/display Sink
