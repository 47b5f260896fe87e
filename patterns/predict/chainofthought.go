package predict

import (
	"github.com/reagentlabs/reagent/core/signature"
	"github.com/reagentlabs/reagent/providers/ai"
)

// ReasoningField is the name of the output field [NewChainOfThought]
// prepends to the signature.
const ReasoningField = "reasoning"

// NewChainOfThought builds a [Predict] whose signature gains a leading
// reasoning output field, so the model produces its thinking before the
// caller's output fields. The reasoning text is returned in the prediction
// under [ReasoningField]; callers that only care about the final answer
// can ignore it.
func NewChainOfThought(provider ai.Provider, sig *signature.Signature, opts ...Option) (*Predict, error) {
	reasoned, err := sig.PrependOutput(signature.Field{
		Name:        ReasoningField,
		Description: "Think step by step before producing the other fields.",
		TypeHint:    signature.TypeString,
	})
	if err != nil {
		return nil, err
	}
	return New(provider, reasoned, opts...)
}
