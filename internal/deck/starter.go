package deck

import "github.com/conorfennell/flashreview/internal/domain"

var starter = []domain.Pair{
	{Question: "What does supervised learning mean?", Answer: "Learning from labeled data to map inputs to outputs."},
	{Question: "What is the difference between supervised and unsupervised learning?", Answer: "Supervised learning uses labeled data; unsupervised learning finds patterns in unlabeled data."},
	{Question: "What does overfitting mean in machine learning?", Answer: "When a model learns the training data too well and performs poorly on new, unseen data."},
	{Question: "What is a neural network?", Answer: "A computational model inspired by biological neurons that learns patterns through interconnected layers."},
	{Question: "What is cross-validation?", Answer: "A technique to evaluate model performance by splitting data into multiple train/test folds."},
	{Question: "What is regularization?", Answer: "Methods (like L1/L2) that penalize model complexity to reduce overfitting."},
	{Question: "What is gradient descent?", Answer: "An optimization algorithm to minimize a loss function by iteratively updating parameters."},
	{Question: "What is feature scaling and why is it used?", Answer: "Scaling features to similar ranges so models converge faster and perform better."},
}

// Starter returns the built-in machine learning deck.
func Starter() []domain.Pair {
	return append([]domain.Pair(nil), starter...)
}
