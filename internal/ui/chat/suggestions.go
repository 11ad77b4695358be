// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// SuggestedQuestions are offered in an empty conversation. Picking one fills
// the input; it is not sent until the user submits.
var SuggestedQuestions = []string{
	"Bạn có thể giúp tôi tạo một ứng dụng React không?",
	"Làm thế nào để tối ưu hóa hiệu suất website?",
	"Cách xử lý lỗi trong JavaScript?",
	"Tôi muốn học về API REST",
	"Cách deploy ứng dụng lên server?",
	"Làm thế nào để sử dụng Material UI?",
	"Tôi cần tạo database schema",
	"Cách implement authentication?",
	"Tôi muốn tạo chatbot AI",
	"Làm thế nào để test ứng dụng React?",
}

// UI strings.
const (
	welcomeTitle     = "Xin chào!"
	suggestionsTitle = "Bạn muốn hỏi gì?"
	suggestionsHint  = "Hoặc bạn có thể nhập câu hỏi tùy ý ở bên dưới"
	historyTitle     = "Gần đây"
	historyEmpty     = "Chưa có cuộc trò chuyện nào"
	newChatLabel     = "+ Tạo chat mới"
	thinkingLabel    = "Đang suy nghĩ..."
	inputPlaceholder = "Nhập tin nhắn cho %s..."
	noticeNewChat    = "Đã tạo chat mới. Hãy gửi lại tin nhắn."
	noticeCopied     = "Đã sao chép câu trả lời"
	noticeNothing    = "Chưa có câu trả lời để sao chép"
	noticeDeleted    = "Đã xóa chat"
	noticeReloaded   = "Lịch sử đã được cập nhật"
)

// featureLabels maps feature flags to their input-area chip labels.
var featureLabels = []struct {
	flag  string
	label string
}{
	{"file_upload", "Tệp"},
	{"video_call", "Video"},
	{"deep_search", "Tìm kiếm sâu"},
	{"canvas", "Canvas"},
	{"image_upload", "Hình ảnh"},
	{"voice_input", "Giọng nói"},
}
