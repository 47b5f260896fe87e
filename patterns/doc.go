// Package patterns defines the execution contract shared by the prompting
// strategies built on top of it.
//
// A [Module] turns named inputs into a named [Prediction] by talking to a
// language model. [patterns/predict.Predict] is the basic signature-driven
// module, [patterns/predict.ChainOfThought] adds an explicit reasoning
// field, and [patterns/react.ReAct] runs a tool-using agent loop composed
// from both.
package patterns
