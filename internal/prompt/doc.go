// Package prompt builds the instructions vitalstory sends to a generative
// model.
//
// [FollowUp] returns the single instruction string that asks a model for
// exactly three follow-up questions about a health log entry, formatted as a
// JSON array. It is a pure function of its input and performs no validation:
// the log text is embedded verbatim, even when empty.
//
// Chat-style backends use [Build], which wraps the same instruction in a
// system + user message pair:
//
//	messages, err := prompt.Build(prompt.TypeFollowUp, prompt.BuildOptions{
//	    LogText: "Woke up dizzy, worse when standing",
//	})
//	if err != nil {
//	    return err
//	}
//	resp, err := provider.Chat(ctx, messages, &llm.ChatOptions{Schema: prompt.FollowUpSchema()})
package prompt
