package models

// TokensValidation classifies a proposed token pair. Returned as a value,
// never as an error, so callers can branch before any network interaction.
type TokensValidation string

const (
	TokensValid        TokensValidation = "valid"
	TokensInvalid      TokensValidation = "invalid"
	TokensWrapOnly     TokensValidation = "wrapOnly"
	TokensUnwrapOnly   TokensValidation = "unwrapOnly"
	TokensWrapAndOrder TokensValidation = "wrapAndOrder"
	TokensDstTokenZero TokensValidation = "dstTokenZero"
)

// OrderInputValidation is the result of the pre-submission input pipeline,
// mirroring the contract's own checks so an invalid order never costs a
// transaction.
type OrderInputValidation string

const (
	OrderInputValid                       OrderInputValidation = "valid"
	OrderInputInvalidTokens               OrderInputValidation = "invalidTokens"
	OrderInputInvalidSrcAmount            OrderInputValidation = "invalidSrcAmount"
	OrderInputInvalidSrcChunkAmount       OrderInputValidation = "invalidSrcChunkAmount"
	OrderInputInvalidDstMinChunkAmountOut OrderInputValidation = "invalidDstMinChunkAmountOut"
	OrderInputInvalidDeadline             OrderInputValidation = "invalidDeadline"
	OrderInputInvalidFillDelaySeconds     OrderInputValidation = "invalidFillDelaySeconds"
	OrderInputInvalidSrcUsd               OrderInputValidation = "invalidSrcUsd"
	OrderInputInvalidSmallestSrcChunkUsd  OrderInputValidation = "invalidSmallestSrcChunkUsd"
)
