// Package errors is the structured error type shared by every endguard layer.
//
// An *Error carries a Code, a message, an optional cause and metadata. Codes
// line up with gRPC status codes, so handlers finish with
//
//	return nil, errors.ToGRPCError(err)
//
// and the CLI restores the code and metadata with FromGRPCError.
//
// Wrapping keeps the code of whatever it wraps:
//
//	if err := snapshots.Save(ctx, input); err != nil {
//	    return errors.Wrap(err, "failed to save session snapshot")
//	}
//
// Definition loaders report a bad file with ParseError; Location pulls the
// file and fragment back out for logging:
//
//	file, fragment := errors.Location(err)
//
// Config and request checks go through a ValidationBuilder:
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("world", in.World, vb)
//	errors.ValidatePercent("chest_chance", table.ChestChance, vb)
//	return vb.Build()
package errors
