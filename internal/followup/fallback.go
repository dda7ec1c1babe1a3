package followup

// DefaultQuestions is returned when a response arrives but cannot be turned
// into a valid batch.
var DefaultQuestions = NewBatch([BatchSize]string{
	"How severe are your symptoms on a scale from 1 to 10?",
	"When did these symptoms start, and have they changed since then?",
	"Is there anything that makes your symptoms better or worse?",
})

// UnavailableQuestions is returned when the question source cannot be reached.
var UnavailableQuestions = NewBatch([BatchSize]string{
	"Can you describe how you are feeling right now in a bit more detail?",
	"How long have you been experiencing this?",
	"Have you noticed anything that seems to trigger or relieve it?",
})
