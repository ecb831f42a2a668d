package domain

// Upload is a file payload received through the GraphQL multipart request
// protocol, read fully into memory before the mutation runs.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}
