package intelligence

import "voyago/models"

// faqAnswers are the deterministic replies per FAQ topic, used directly when
// no LLM is configured and as the fallback when generation fails.
var faqAnswers = map[models.Intent]string{
	models.IntentFAQVisa: "Турция, Египет, ОАЭ, Таиланд и Мальдивы принимают россиян без визы, " +
		"для Шенгена виза оформляется заранее. Загранпаспорт должен действовать ещё минимум " +
		"6 месяцев после возвращения. Детали по конкретной стране уточнит наш менеджер.",
	models.IntentFAQPayment: "Принимаем оплату картами (Visa, MasterCard, МИР), наличными в офисе, " +
		"переводом и через СБП. Есть рассрочка 0% на 4-6 месяцев. Для бронирования достаточно " +
		"предоплаты от 30%, горящие туры оплачиваются сразу полностью.",
	models.IntentFAQCancel: "Условия возврата зависят от срока: более 30 дней до вылета — возврат " +
		"90-100%, 15-30 дней — удержание до 25%, ближе к вылету удержания растут. Рекомендуем " +
		"страховку от невыезда (3-5% от стоимости тура), она покрывает отмену по болезни или отказу в визе.",
	models.IntentFAQInsurance: "Медицинская страховка с покрытием 30 000-50 000 USD уже включена " +
		"в пакетные туры. Дополнительно можно оформить страховку от невыезда, страховку багажа " +
		"и полис для активного отдыха.",
	models.IntentFAQDocuments: "Для поездки нужны загранпаспорт (действующий 6+ месяцев), авиабилеты, " +
		"ваучер отеля и страховой полис. Для детей — свой загранпаспорт, свидетельство о рождении " +
		"и согласие на выезд, если ребёнок едет с одним родителем.",
}

// genericFAQAnswer covers an FAQ route without a matching topic.
const genericFAQAnswer = "Хороший вопрос! Точную информацию по нему подскажет наш менеджер. " +
	"А пока могу помочь подобрать тур."

// knowledgeBase is the full agency reference text injected into the FAQ
// prompt so the LLM answers strictly from it.
const knowledgeBase = `База знаний туристического агентства МГП.

Визы и въезд.
Без визы для граждан РФ: Турция (до 60 дней), Египет (виза по прилёту 25$, Шарм-эль-Шейх до 15 дней без визы), ОАЭ (до 90 дней), Таиланд (до 30 дней), Мальдивы (до 30 дней), Индонезия/Бали (до 30 дней), Куба (до 30 дней), Доминикана (до 30 дней), Черногория (до 30 дней), Шри-Ланка (электронная виза ETA).
Виза требуется: страны Шенгена (Греция, Испания, Италия, Франция), США, Великобритания. Кипр — бесплатная провиза онлайн.
Загранпаспорт: срок действия минимум 6 месяцев после даты возвращения, чистые страницы для штампов.

Оплата туров.
Способы: банковские карты (Visa, MasterCard, МИР), наличные в офисе, банковский перевод, СБП.
Рассрочка 0% на 4-6 месяцев от банков-партнёров, первоначальный взнос от 10%.
Бронирование: предоплата от 30%, полная оплата за 14 дней до вылета. Горящие туры — полная оплата сразу.

Отмена и возврат.
Более 30 дней до вылета — возврат 90-100% за вычетом фактических расходов; 15-30 дней — удержание до 25%; 7-14 дней — до 50%; 3-7 дней — до 75%; менее 3 дней — возврат не гарантирован.
Страховка от невыезда: 3-5% от стоимости тура, покрывает отмену по болезни, отказу в визе и другим уважительным причинам.

Страхование.
Медицинская страховка включена в пакетные туры, покрытие 30 000-50 000 USD: экстренная помощь, госпитализация, эвакуация.
Дополнительно: страховка от невыезда, страховка багажа, страховка от несчастных случаев, полис для активного отдыха (дайвинг, сёрфинг, лыжи).

Документы для поездки.
Взрослым: загранпаспорт (6+ месяцев), авиабилеты и ваучер отеля, страховой полис, копия внутреннего паспорта.
Детям: загранпаспорт ребёнка, копия свидетельства о рождении, согласие на выезд от второго родителя при поездке с одним родителем.
Для отдельных стран: обратные билеты, бронь отеля, подтверждение финансовой состоятельности.`

// faqPrompt asks for an answer grounded in the knowledge base only.
const faqPrompt = `Ты — вежливый ассистент туристического агентства МГП.
Используй ТОЛЬКО информацию из базы знаний для ответа на вопрос.
Отвечай кратко, по существу, дружелюбно.
Если информации нет в базе знаний — скажи, что нужно уточнить у менеджера.

База знаний:
%s

Вопрос клиента: %s

Дай полезный ответ:`

// intentPrompt asks for exactly one label from the closed set.
const intentPrompt = `Определи намерение клиента турагентства. Ответь ровно одним словом из списка:
search_tour, hot_tours, booking, greeting, general_chat, faq_visa, faq_payment, faq_cancel, faq_insurance, faq_documents.

Вопросы о погоде, климате, сравнении стран и просьбы посоветовать — general_chat.
Просьба найти или подобрать тур с параметрами — search_tour.

Сообщение: %s`

// smallTalkPrompt answers a general question and steers back to the tour.
const smallTalkPrompt = `Ты — консультант туристического агентства МГП.
Ответь на вопрос клиента коротко и дружелюбно (2-3 предложения), затем мягко
верни разговор к подбору тура одним уточняющим вопросом.

%sВопрос клиента: %s`
