package review

// Button labels shown on the reply keyboards. The submit and clear labels
// start with the recognized command triggers.
const (
	ButtonShareContact = "📱 Поделиться номером"
	ButtonSubmit       = "✅ Отправить отзыв"
	ButtonClear        = "🔄 Очистить"
	BonusButtonPrefix  = "🎁 "
)

// Recognized command triggers, matched case-insensitively as prefixes.
const (
	TriggerSubmit = "✅ Отправить"
	TriggerClear  = "🔄 Очистить"
)

const (
	textGreeting        = "Привет! Поделитесь номером телефона:"
	textRegistered      = "Спасибо! Теперь отправьте сообщения для отзыва (текст, фото, видео и т.д.). Когда будете готовы — нажмите «✅ Отправить отзыв»."
	textShareFirst      = "Сначала поделитесь номером телефона."
	textAdded           = "✅ Добавлено в отзыв."
	textNothingToSend   = "Вы ещё не добавили сообщений для отзыва."
	textThanks          = "🙏 Спасибо за ваш отзыв! Теперь выберите бонусную процедуру:"
	textBonusMenu       = "🎁 Доступные бонусы:"
	textNothingToClear  = "Вы ещё ничего не отправили."
	textCleared         = "🗑️ Отзыв очищен. Можете начать заново."
	textSendReviewFirst = "Сначала отправьте отзыв."
	textBonusUnknown    = "Этот бонус недоступен."
	textBonusChosen     = "🎉 Спасибо! Ваш бонус «%s» отправлен администрации."
)
