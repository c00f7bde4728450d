package dto

type GetAllDocumentsResponse struct {
	FileName string `json:"file_name"`
	Pages    int64  `json:"pages"`
	Chunks   int64  `json:"chunks"`
}
