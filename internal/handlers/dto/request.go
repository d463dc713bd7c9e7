package dto

// CreateRequest заявка пациента на консультацию
type CreateRequest struct {
	Title          string `json:"title" binding:"required,max=255"`
	Description    string `json:"description" binding:"required"`
	Specialization string `json:"specialization" binding:"required,oneof=nutritionist sports_doctor psychologist"`
}

// SendMessage сообщение, отправляемое в чат по HTTP.
// Текст или файл, пустое сообщение отклоняется сервисом.
type SendMessage struct {
	Text     string `json:"text"`
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
}
