package textcases

import (
	"fmt"
	"strings"
)

const (
	ChooseProfessionAgain = "Пожалуйста, выбери должность с помощью кнопок."
	RegisterFirst         = "Я тебя еще не знаю. Пожалуйста, сначала зарегистрируйся с помощью команды /start."
	ChooseAnswer          = "Пожалуйста, выберите ответ с помощью кнопок."
	QuizFinished          = "Спасибо за твои ответы! Хорошего дня! 😊"
	Cancelled             = "Действие отменено."
	QuizNotice            = "Время пройти опрос! Нажмите /quiz чтобы начать."
	SaveFailed            = "Не получилось сохранить ответ. Попробуй отправить его еще раз чуть позже."
	SomethingWentWrong    = "Что-то пошло не так. Попробуй еще раз чуть позже."
)

// Greeting приветствует нового пользователя. mention уже экранирован
func Greeting(mention string) string {
	return fmt.Sprintf("Привет, %s!\n\nЯ бот для отслеживания настроения команды. "+
		"Чтобы начать, пожалуйста, выбери свою должность из списка ниже.", mention)
}

func WelcomeBack(mention, profession string) string {
	return fmt.Sprintf("С возвращением, %s! Я уже знаю, что твоя должность - %s. "+
		"Просто дождись следующего опроса.", mention, Escape(profession))
}

func Registered(profession string) string {
	return fmt.Sprintf("Отлично! Я записал, что твоя должность - %s. "+
		"Теперь ты будешь получать опросы по расписанию. Спасибо!", Escape(profession))
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// Escape готовит произвольный текст (например, из файла каталога) к отправке в HTML режиме
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}
